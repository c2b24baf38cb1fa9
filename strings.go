package main

//
// The string allocator.  A thin layer, but it is the one place the
// maximum string length is enforced, so every string the evaluator
// builds comes through here.  Release is the garbage collector's
// job
//

func allocString(length int) []byte {

	runtimeCheck(length <= maxStringLen, ESTRINGLEN)

	return make([]byte, length)
}

//
// Extend a temporary string in place to hold extra bytes.  The
// returned slice may or may not share the original backing array;
// callers must use the return value
//

func resizeString(s []byte, newLen int) []byte {

	runtimeCheck(newLen <= maxStringLen, ESTRINGLEN)

	if cap(s) >= newLen {
		return s[:newLen]
	}

	out := make([]byte, newLen, newLen+newLen/2)
	copy(out, s)

	return out
}

//
// Copy a string that aliases variable storage, so the copy can be
// pushed as a temporary
//

func copyString(s []byte) []byte {

	out := allocString(len(s))
	copy(out, s)

	return out
}
