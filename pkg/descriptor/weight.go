package descriptor

// Complexity estimates the structural cost of decoding or encoding d:
// every primitive costs 1, a List or Composite costs 1 plus the cost of
// what it contains, and a Union costs 1 plus its most expensive branch
// (decode tries every branch, but only one determines the shape of the
// eventual value). Callers outside this package use Complexity as a
// weighting factor — a deeply nested PDU should consume proportionally
// more of a rate-limit or concurrency budget than a bare integer field.
func Complexity(d Descriptor) int {
	switch desc := d.(type) {
	case List:
		return 1 + Complexity(desc.Inner)
	case Composite:
		total := 1
		for _, field := range desc.Fields {
			total += Complexity(field)
		}
		return total
	case Union:
		max := 0
		for _, branch := range desc.Branches {
			if c := Complexity(branch); c > max {
				max = c
			}
		}
		return 1 + max
	default:
		return 1
	}
}
