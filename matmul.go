package main

//
// The matrix multiplication operator.  Both operands must be arrays
// of the same element type, integer or float, and of rank one or two.
// A vector is treated as a row or a column depending on which side of
// the operator it sits:
//
//   (n) . (n)       dot product, a one element vector
//   (n) . (n x p)   row vector times matrix, gives (p)
//   (n x m) . (m)   matrix times column vector, gives (n)
//   (n x m) . (m x p)  the general case, gives (n x p)
//
// Integer accumulation is plain 32-bit arithmetic with no overflow
// widening: a matrix does not get to change its element type, and
// checking every partial sum would double the cost of the inner loop
//

func matmulShape(lhs, rhs stackEntry) (n, m, p int32, outDims []int32) {

	a := lhs.arr
	b := rhs.arr

	runtimeCheck(len(a.dims) <= 2 && len(b.dims) <= 2, EMATDIMS)

	switch {
	case len(a.dims) == 1 && len(b.dims) == 1:
		runtimeCheck(a.dims[0] == b.dims[0], EARRAYTYPE)
		return 1, a.dims[0], 1, []int32{1}

	case len(a.dims) == 1:
		runtimeCheck(a.dims[0] == b.dims[0], EARRAYTYPE)
		return 1, a.dims[0], b.dims[1], []int32{b.dims[1]}

	case len(b.dims) == 1:
		runtimeCheck(a.dims[1] == b.dims[0], EARRAYTYPE)
		return a.dims[0], a.dims[1], 1, []int32{a.dims[0]}

	default:
		runtimeCheck(a.dims[1] == b.dims[0], EARRAYTYPE)
		return a.dims[0], a.dims[1], b.dims[1], []int32{a.dims[0], b.dims[1]}
	}
}

func evalMatmulInt(ev *evaluator) {

	rhs := ev.popEntry()
	lhs := ev.popEntry()

	runtimeCheck(lhs.tag == tagIntArray || lhs.tag == tagIntArrayTemp,
		EARRAYTYPE)

	n, m, p, outDims := matmulShape(lhs, rhs)

	a := lhs.arr.i
	b := rhs.arr.i

	out := newArrayDesc(tagInt, outDims)

	for row := int32(0); row < n; row++ {
		for col := int32(0); col < p; col++ {
			var sum int32

			for k := int32(0); k < m; k++ {
				sum += a[row*m+k] * b[k*p+col]
			}

			out.i[row*p+col] = sum
		}
	}

	ev.pushArray(out, true)
}

func evalMatmulFloat(ev *evaluator) {

	rhs := ev.popEntry()
	lhs := ev.popEntry()

	runtimeCheck(lhs.tag == tagFloatArray || lhs.tag == tagFloatArrayTemp,
		EARRAYTYPE)

	n, m, p, outDims := matmulShape(lhs, rhs)

	a := lhs.arr.f
	b := rhs.arr.f

	out := newArrayDesc(tagFloat, outDims)

	for row := int32(0); row < n; row++ {
		for col := int32(0); col < p; col++ {
			var sum float64

			for k := int32(0); k < m; k++ {
				sum += a[row*m+k] * b[k*p+col]
			}

			out.f[row*p+col] = sum
		}
	}

	ev.pushArray(out, true)
}
