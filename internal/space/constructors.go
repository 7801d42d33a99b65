package space

import "math"

// Uniform samples a float uniformly in [low, high).
func Uniform(low, high float64) *Domain {
	return Float(low, high).Uniform()
}

// QUniform samples a float uniformly in [low, high] rounded to a multiple of q.
func QUniform(low, high, q float64) *Domain {
	return Float(low, high).Uniform().Quantized(q)
}

// LogUniform samples a float in [low, high) uniformly in log space.
func LogUniform(low, high float64) *Domain {
	return Float(low, high).LogUniform()
}

// QLogUniform is LogUniform rounded to a multiple of q.
func QLogUniform(low, high, q float64) *Domain {
	return Float(low, high).LogUniform().Quantized(q)
}

// RandInt samples an integer uniformly in [low, high).
func RandInt(low, high int64) *Domain {
	return Integer(low, high).Uniform()
}

// QRandInt samples an integer in [low, high] rounded to a multiple of q. The upper
// bound is inclusive.
func QRandInt(low, high, q int64) *Domain {
	return Integer(low, high+1).Uniform().Quantized(float64(q))
}

// LogRandInt samples an integer in [low, high) uniformly in log space.
func LogRandInt(low, high int64) *Domain {
	return Integer(low, high).LogUniform()
}

// QLogRandInt is LogRandInt rounded to a multiple of q. The upper bound is
// inclusive.
func QLogRandInt(low, high, q int64) *Domain {
	return Integer(low, high+1).LogUniform().Quantized(float64(q))
}

// RandN samples an unbounded normal distribution.
func RandN(mean, sd float64) *Domain {
	return Float(math.Inf(-1), math.Inf(1)).Normal(mean, sd)
}

// QRandN is RandN rounded to a multiple of q.
func QRandN(mean, sd, q float64) *Domain {
	return RandN(mean, sd).Quantized(q)
}

// Choice samples uniformly from values.
func Choice(values ...any) *Domain {
	return Categorical(values...).Uniform()
}

// GridSearch enumerates values exhaustively.
func GridSearch(values ...any) *Domain {
	return Grid(values...)
}
