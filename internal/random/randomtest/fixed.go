// Package randomtest provides a scripted random.Source for tests in any
// package that needs to fix dice, samples or weighted picks.
package randomtest

// Fixed is a scripted random.Source. It replays Ints and Floats in
// order, wrapping around when exhausted. Intn reduces each scripted value
// modulo n so it always stays in range.
type Fixed struct {
	Ints   []int
	Floats []float64

	i, f int
}

func (x *Fixed) Intn(n int) int {
	if len(x.Ints) == 0 {
		return 0
	}
	v := x.Ints[x.i%len(x.Ints)]
	x.i++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (x *Fixed) Float64() float64 {
	if len(x.Floats) == 0 {
		return 0
	}
	v := x.Floats[x.f%len(x.Floats)]
	x.f++
	return v
}
