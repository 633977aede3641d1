package edges

import (
	"image"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/terrane-data/curvetrace/internal/raster"
)

// cannyEdges reduces a grid to a binary edge image. Invalid cells never
// contribute to the blur or the gradients and never produce edges, so a
// no-data hole behaves like a grid border rather than a cliff in the data.
func cannyEdges(g *raster.Grid, p Params) *image.Gray {
	rows, cols := g.Rows, g.Cols

	valid := make([]bool, rows*cols)
	vals := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			v := g.At(r, c)
			if !g.IsNoData(v) {
				valid[i] = true
				vals[i] = v
			}
		}
	}

	smooth := blurMasked(vals, valid, rows, cols, p.Sigma)
	gx, gy, mag, gradOK := gradients(smooth, valid, rows, cols)
	lo, hi := magnitudeThresholds(mag, gradOK, p.LowQuantile, p.HighQuantile)
	thin := suppressNonMaxima(gx, gy, mag, gradOK, rows, cols)
	return hysteresis(mag, thin, rows, cols, lo, hi)
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// blurMasked applies a separable Gaussian to the valid cells only. The
// kernel is renormalized over the valid cells under it, so values near
// borders and no-data holes are averaged rather than dragged toward zero.
// Invalid cells stay invalid.
func blurMasked(vals []float64, valid []bool, rows, cols int, sigma float64) []float64 {
	k := gaussianKernel(sigma)
	radius := len(k) / 2

	tmp := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if !valid[i] {
				continue
			}
			sum, wsum := 0.0, 0.0
			for t := -radius; t <= radius; t++ {
				cc := c + t
				if cc < 0 || cc >= cols {
					continue
				}
				j := r*cols + cc
				if !valid[j] {
					continue
				}
				sum += k[t+radius] * vals[j]
				wsum += k[t+radius]
			}
			tmp[i] = sum / wsum
		}
	}

	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if !valid[i] {
				continue
			}
			sum, wsum := 0.0, 0.0
			for t := -radius; t <= radius; t++ {
				rr := r + t
				if rr < 0 || rr >= rows {
					continue
				}
				j := rr*cols + c
				if !valid[j] {
					continue
				}
				sum += k[t+radius] * tmp[j]
				wsum += k[t+radius]
			}
			out[i] = sum / wsum
		}
	}
	return out
}

// Sobel kernels with x increasing along columns and y along rows.
var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// gradients computes Sobel gradients and their magnitude. A cell gets a
// gradient only when its full 3x3 neighbourhood is valid and in bounds,
// which erodes the valid region by one cell the same way the blur mask is
// eroded upstream of thresholding.
func gradients(vals []float64, valid []bool, rows, cols int) (gx, gy, mag []float64, ok []bool) {
	n := rows * cols
	gx = make([]float64, n)
	gy = make([]float64, n)
	mag = make([]float64, n)
	ok = make([]bool, n)
	for r := 1; r < rows-1; r++ {
	nextCell:
		for c := 1; c < cols-1; c++ {
			i := r*cols + c
			var sx, sy float64
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					j := (r+dr)*cols + c + dc
					if !valid[j] {
						continue nextCell
					}
					sx += sobelX[dr+1][dc+1] * vals[j]
					sy += sobelY[dr+1][dc+1] * vals[j]
				}
			}
			gx[i], gy[i] = sx, sy
			mag[i] = math.Hypot(sx, sy)
			ok[i] = true
		}
	}
	return gx, gy, mag, ok
}

// magnitudeThresholds converts the quantile parameters into absolute
// hysteresis thresholds over the gradient magnitudes of valid cells.
func magnitudeThresholds(mag []float64, ok []bool, lowQ, highQ float64) (lo, hi float64) {
	var sample []float64
	for i, v := range mag {
		if ok[i] {
			sample = append(sample, v)
		}
	}
	if len(sample) == 0 {
		opsf("no cell has a full gradient neighbourhood, grid too small or too sparse for edges")
		return math.Inf(1), math.Inf(1)
	}
	sort.Float64s(sample)
	lo = stat.Quantile(lowQ, stat.Empirical, sample, nil)
	hi = stat.Quantile(highQ, stat.Empirical, sample, nil)
	return lo, hi
}

// suppressNonMaxima keeps a cell only when its magnitude is no smaller
// than both neighbours along the gradient direction, quantized to the
// four grid sectors.
func suppressNonMaxima(gx, gy, mag []float64, ok []bool, rows, cols int) []bool {
	keep := make([]bool, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if !ok[i] || mag[i] == 0 {
				continue
			}
			angle := math.Atan2(gy[i], gx[i]) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var dr, dc int
			switch int(math.Round(angle/45)) % 4 {
			case 0:
				dr, dc = 0, 1
			case 1:
				dr, dc = 1, 1
			case 2:
				dr, dc = 1, 0
			default:
				dr, dc = 1, -1
			}
			if mag[i] >= neighborMag(mag, ok, rows, cols, r+dr, c+dc) &&
				mag[i] >= neighborMag(mag, ok, rows, cols, r-dr, c-dc) {
				keep[i] = true
			}
		}
	}
	return keep
}

func neighborMag(mag []float64, ok []bool, rows, cols, r, c int) float64 {
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0
	}
	i := r*cols + c
	if !ok[i] {
		return 0
	}
	return mag[i]
}

// hysteresis grows edges from cells at or above the high threshold through
// 8-connected cells at or above the low one.
func hysteresis(mag []float64, thin []bool, rows, cols int, lo, hi float64) *image.Gray {
	marked := make([]bool, rows*cols)
	var stack []int
	for i, t := range thin {
		if t && mag[i] >= hi {
			marked[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := i/cols, i%cols
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				rr, cc := r+dr, c+dc
				if rr < 0 || rr >= rows || cc < 0 || cc >= cols {
					continue
				}
				j := rr*cols + cc
				if marked[j] || !thin[j] || mag[j] < lo {
					continue
				}
				marked[j] = true
				stack = append(stack, j)
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, cols, rows))
	for i, m := range marked {
		if m {
			out.SetGray(i%cols, i/cols, color.Gray{Y: 255})
		}
	}
	return out
}
