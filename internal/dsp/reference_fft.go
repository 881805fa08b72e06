package dsp

import "math"

// referenceFFT is a textbook recursive Cooley-Tukey FFT, used only by
// tests as a correctness oracle for the production mjibson/go-dsp
// path. Input length must be a power of two.
func referenceFFT(input []float64) []complex128 {
	complexArray := make([]complex128, len(input))
	for k, v := range input {
		complexArray[k] = complex(v, 0)
	}
	return recursiveFFT(complexArray)
}

func recursiveFFT(input []complex128) []complex128 {
	n := len(input)
	if n <= 1 {
		return input
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = input[2*i]
		odd[i] = input[2*i+1]
	}

	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		twiddle := complex(math.Cos(angle), math.Sin(angle))
		result[k] = even[k] + twiddle*odd[k]
		result[k+n/2] = even[k] - twiddle*odd[k]
	}
	return result
}
