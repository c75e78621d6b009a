package breeder

import "lutfarm/models"

// Combine blends an above-target and a below-target candidate so that the
// child's RTP equals avgWin. Each parent's amplitudes are divided by its own
// mass, so the child carries unit mass. Regions and jitters keep gating the
// kernels they came with.
func Combine(pos, neg *models.Candidate, avgWin float64) models.Candidate {
	w := (avgWin - neg.RTP) / (pos.RTP - neg.RTP)
	offset := len(pos.Kernels)

	child := models.Candidate{
		Kernels: make([]models.Kernel, 0, len(pos.Kernels)+len(neg.Kernels)),
		Regions: make([]models.Region, 0, len(pos.Regions)+len(neg.Regions)),
		Jitters: make([]models.Jitter, 0, len(pos.Jitters)+len(neg.Jitters)),
		RTP:     w*pos.RTP + (1-w)*neg.RTP,
		Mass:    1,
	}

	for _, k := range pos.Kernels {
		k.Amp *= w / pos.Mass
		child.Kernels = append(child.Kernels, k)
	}
	for _, k := range neg.Kernels {
		k.Amp *= (1 - w) / neg.Mass
		child.Kernels = append(child.Kernels, k)
	}

	for _, r := range pos.Regions {
		r.Kernels = shift(r.Kernels, 0)
		child.Regions = append(child.Regions, r)
	}
	for _, r := range neg.Regions {
		r.Kernels = shift(r.Kernels, offset)
		child.Regions = append(child.Regions, r)
	}

	for _, j := range pos.Jitters {
		j.Kernels = shift(j.Kernels, 0)
		child.Jitters = append(child.Jitters, j)
	}
	for _, j := range neg.Jitters {
		j.Kernels = shift(j.Kernels, offset)
		child.Jitters = append(child.Jitters, j)
	}

	return child
}

// shift copies kernel indexes moved by offset
func shift(indexes []int, offset int) []int {
	out := make([]int, len(indexes))
	for i, v := range indexes {
		out[i] = v + offset
	}
	return out
}

// allKernels returns 0..n-1
func allKernels(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
