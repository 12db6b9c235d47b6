package raster

// ConnectedComponents splits the mask into one cropped sub-mask per
// 4-connected lit region. Operations that need "the polygon for this pad"
// (soldermask clearance) work against these
// components directly instead of against vector polygons, since the
// bounding box, centroid and local buffer of a component are all that
// those strategies actually need.
func (m *Mask) ConnectedComponents() []*Mask {
	labels := make([]int, m.Width*m.Height)
	var comps []*Mask

	var stack [][2]int
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			idx := y*m.Width + x
			if m.at(x, y) == 0 || labels[idx] != 0 {
				continue
			}

			label := len(comps) + 1
			minPX, minPY := x, y
			maxPX, maxPY := x, y

			stack = stack[:0]
			stack = append(stack, [2]int{x, y})
			labels[idx] = label
			var pixels [][2]int

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				pixels = append(pixels, p)
				if p[0] < minPX {
					minPX = p[0]
				}
				if p[0] > maxPX {
					maxPX = p[0]
				}
				if p[1] < minPY {
					minPY = p[1]
				}
				if p[1] > maxPY {
					maxPY = p[1]
				}

				neighbors := [4][2]int{{p[0] - 1, p[1]}, {p[0] + 1, p[1]}, {p[0], p[1] - 1}, {p[0], p[1] + 1}}
				for _, n := range neighbors {
					if n[0] < 0 || n[1] < 0 || n[0] >= m.Width || n[1] >= m.Height {
						continue
					}
					nidx := n[1]*m.Width + n[0]
					if labels[nidx] != 0 || m.at(n[0], n[1]) == 0 {
						continue
					}
					labels[nidx] = label
					stack = append(stack, n)
				}
			}

			w, h := maxPX-minPX+1, maxPY-minPY+1
			sub := &Mask{
				Pix:     make([]uint8, w*h),
				Width:   w,
				Height:  h,
				OriginX: m.OriginX + float64(minPX)/m.Scale,
				OriginY: m.OriginY + float64(minPY)/m.Scale,
				Scale:   m.Scale,
			}
			for _, p := range pixels {
				sub.set(p[0]-minPX, p[1]-minPY, 1)
			}
			comps = append(comps, sub)
		}
	}
	return comps
}

// Centroid returns the mean position of every lit pixel, in millimeters.
func (m *Mask) Centroid() (float64, float64, bool) {
	var sumX, sumY float64
	var n int
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.at(x, y) == 0 {
				continue
			}
			mx, my := m.ToMM(x, y)
			sumX += mx
			sumY += my
			n++
		}
	}
	if n == 0 {
		return 0, 0, false
	}
	return sumX / float64(n), sumY / float64(n), true
}
