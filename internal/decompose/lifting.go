package decompose

import "github.com/lxAltria/Multiprecision-data-refactoring/numeric"

// neighborWeights computes the two coarse-sample indices bracketing
// detail index j and the interpolation weight toward the right one.
// It is a pure function of (sn, dn, j) only — never of the data —
// which is what lets liftLineInverse recover the original coarse
// samples from the detail values alone, without needing them in
// forward order.
func neighborWeights(sn, dn, j uint32) (left, right uint32, w float64) {
	if sn == 1 {
		return 0, 0, 0
	}
	t := (float64(j) + 0.5) * float64(sn) / float64(dn)
	left = uint32(t)
	if left > sn-2 {
		left = sn - 2
	}
	w = t - float64(left)
	if w > 1 {
		w = 1
	}
	return left, left + 1, w
}

// liftLineForward splits line (length d = sn+dn) in place: positions
// [0,sn) keep (or, with withUpdate, absorb a fraction of) the coarse
// approximation; positions [sn,d) become the residual against a
// linear interpolation of their coarse neighbors.
func liftLineForward[F numeric.Float](line []F, sn uint32, withUpdate bool) {
	dn := uint32(len(line)) - sn
	if dn == 0 {
		return
	}
	coarse := make([]F, sn)
	copy(coarse, line[:sn])
	detail := make([]F, dn)
	updates := make([]float64, sn)
	for j := uint32(0); j < dn; j++ {
		left, right, w := neighborWeights(sn, dn, j)
		pred := float64(coarse[left])*(1-w) + float64(coarse[right])*w
		detail[j] = line[sn+j] - F(pred)
		if withUpdate {
			contrib := float64(detail[j]) / 2
			updates[left] += contrib * (1 - w)
			updates[right] += contrib * w
		}
	}
	for i := uint32(0); i < sn; i++ {
		line[i] = coarse[i] + F(updates[i])
	}
	for j := uint32(0); j < dn; j++ {
		line[sn+j] = detail[j]
	}
}

// liftLineInverse is the exact inverse of liftLineForward.
func liftLineInverse[F numeric.Float](line []F, sn uint32, withUpdate bool) {
	dn := uint32(len(line)) - sn
	if dn == 0 {
		return
	}
	detail := make([]F, dn)
	copy(detail, line[sn:sn+dn])
	updates := make([]float64, sn)
	if withUpdate {
		for j := uint32(0); j < dn; j++ {
			left, right, w := neighborWeights(sn, dn, j)
			contrib := float64(detail[j]) / 2
			updates[left] += contrib * (1 - w)
			updates[right] += contrib * w
		}
	}
	coarse := make([]F, sn)
	for i := uint32(0); i < sn; i++ {
		coarse[i] = line[i] - F(updates[i])
	}
	for j := uint32(0); j < dn; j++ {
		left, right, w := neighborWeights(sn, dn, j)
		pred := float64(coarse[left])*(1-w) + float64(coarse[right])*w
		line[sn+j] = detail[j] + F(pred)
	}
	for i := uint32(0); i < sn; i++ {
		line[i] = coarse[i]
	}
}
