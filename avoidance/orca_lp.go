package avoidance

import "math"

// line is a half-plane constraint: the set of feasible velocities lying
// on the left of {point + t*direction | t in R}, per the ORCA
// construction in direct.go.
type line struct {
	point     Vec2
	direction Vec2
}

const lpEpsilon = 1e-5

// solveLP1 solves the 1D linear program restricted to lines[lineIdx],
// intersected against all earlier half-planes lines[0:lineIdx]. It
// returns the point on that line closest to optVelocity (within the
// max-speed disk), and whether the restricted line segment is
// non-empty.
func solveLP1(lines []line, lineIdx int, radius float32, optVelocity Vec2) (Vec2, bool) {
	l := lines[lineIdx]
	dotProduct := dot(l.point, l.direction)
	discriminant := dotProduct*dotProduct + radius*radius - dot(l.point, l.point)
	if discriminant < 0 {
		return Vec2{}, false
	}

	sqrtDiscriminant := sqrt32(discriminant)
	tLeft := -dotProduct - sqrtDiscriminant
	tRight := -dotProduct + sqrtDiscriminant

	for i := 0; i < lineIdx; i++ {
		denominator := det(l.direction, lines[i].direction)
		numerator := det(lines[i].direction, l.point.Sub(lines[i].point))

		if abs32(denominator) <= lpEpsilon {
			if numerator < 0 {
				return Vec2{}, false
			}
			continue
		}

		t := numerator / denominator
		if denominator >= 0 {
			if t < tRight {
				tRight = t
			}
		} else {
			if t > tLeft {
				tLeft = t
			}
		}
		if tLeft > tRight {
			return Vec2{}, false
		}
	}

	t := dot(l.direction, optVelocity.Sub(l.point))
	if t < tLeft {
		t = tLeft
	} else if t > tRight {
		t = tRight
	}
	return l.point.Add(l.direction.Scale(t)), true
}

// solveLP2 solves the 2D linear program: find the velocity within the
// max-speed disk, and within every half-plane in lines, closest to
// optVelocity. Returns the solution and the index of the first line
// that could not be satisfied (== len(lines) on full success), per
// spec.md §4.4.a's "falls back to the 3-D feasibility LP" note.
func solveLP2(lines []line, radius float32, optVelocity Vec2) (Vec2, int) {
	var result Vec2
	if optLen := optVelocity.Length(); optLen > radius {
		result = normalize(optVelocity).Scale(radius)
	} else {
		result = optVelocity
	}

	for i, l := range lines {
		if det(l.direction, l.point.Sub(result)) > 0 {
			candidate, ok := solveLP1(lines, i, radius, optVelocity)
			if !ok {
				return result, i
			}
			result = candidate
		}
	}
	return result, len(lines)
}

// solveLP3 is invoked when solveLP2 fails to satisfy all half-planes
// within the max-speed disk. It minimizes the maximum distance outside
// any half-plane, per spec.md §4.4.a's "3-D feasibility LP... picks the
// velocity minimizing worst-case penetration."
func solveLP3(lines []line, failedIdx int, radius float32, result Vec2) Vec2 {
	var distance float32

	for i := failedIdx; i < len(lines); i++ {
		if det(lines[i].direction, lines[i].point.Sub(result)) <= distance {
			continue
		}

		projLines := make([]line, 0, i)
		for j := 0; j < i; j++ {
			var projected line
			determinant := det(lines[i].direction, lines[j].direction)

			if abs32(determinant) <= lpEpsilon {
				if dot(lines[i].direction, lines[j].direction) > 0 {
					continue
				}
				projected.point = lines[i].point.Add(lines[j].point).Scale(0.5)
			} else {
				t := det(lines[j].direction, lines[i].point.Sub(lines[j].point)) / determinant
				projected.point = lines[i].point.Add(lines[i].direction.Scale(t))
			}
			projected.direction = normalize(lines[j].direction.Sub(lines[i].direction))
			projLines = append(projLines, projected)
		}

		perpOpt := Vec2{X: -lines[i].direction.Y, Y: lines[i].direction.X}
		candidate, failedSub := solveLP2(projLines, radius, perpOpt)
		if failedSub < len(projLines) {
			// Projected LP remains infeasible for this constraint; keep the
			// best result found so far rather than propagating failure.
			continue
		}
		result = candidate
		distance = det(lines[i].direction, lines[i].point.Sub(result))
	}

	return result
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
