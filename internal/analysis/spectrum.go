package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/acoustid/internal/acoustic"
)

// PowerSpectrum computes the magnitude spectrum of samples with a Hann
// window applied, returning len(samples)/2 bins. Bin i covers frequency
// i * sampleRate / len(samples).
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	buf := make([]complex128, n)
	for i, v := range samples {
		window := 1.0
		if n > 1 {
			window = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
		buf[i] = complex(v*window, 0)
	}
	spectrum := fft.FFT(buf)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// BandLevels folds a power spectrum onto the partition's rendering
// bands, returning the mean bin magnitude inside each band's frequency
// range. sampleRate is the rate the analyzed buffer was rendered at.
func BandLevels(spectrum []float64, sampleRate float64, partition *acoustic.Partition) acoustic.Response {
	var out acoustic.Response
	if len(spectrum) == 0 || sampleRate <= 0 {
		return out
	}
	binWidth := sampleRate / float64(2*len(spectrum))
	counts := [acoustic.NumBands]int{}
	for i, mag := range spectrum {
		f := float64(i) * binWidth
		b := partition.BandIndex(f)
		out[b] += mag
		counts[b]++
	}
	for b := range out {
		if counts[b] > 0 {
			out[b] /= float64(counts[b])
		}
	}
	return out
}

// RMS returns the root-mean-square level of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// MeasureDecayTime estimates T60 from a rendered impulse response by
// Schroeder backward integration: the energy decay curve is the reversed
// cumulative sum of squared samples, and T60 is extrapolated from the
// -5dB..-25dB slope (the usual T20*3 estimate, robust against the noise
// floor at the tail).
func MeasureDecayTime(impulse []float64, sampleRate float64) float64 {
	n := len(impulse)
	if n == 0 || sampleRate <= 0 {
		return 0
	}
	decay := make([]float64, n)
	sum := 0.0
	for i := n - 1; i >= 0; i-- {
		sum += impulse[i] * impulse[i]
		decay[i] = sum
	}
	if decay[0] <= 0 {
		return 0
	}
	db := func(i int) float64 { return 10 * math.Log10(decay[i]/decay[0]) }

	i5, i25 := -1, -1
	for i := 0; i < n; i++ {
		level := db(i)
		if i5 < 0 && level <= -5 {
			i5 = i
		}
		if level <= -25 {
			i25 = i
			break
		}
	}
	if i5 < 0 || i25 <= i5 {
		return 0
	}
	t20 := float64(i25-i5) / sampleRate
	return t20 * 3
}
