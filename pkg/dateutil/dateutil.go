package dateutil

// AgeInYear returns the age reached in a calendar year for a given birth
// year. Simulation steps are whole calendar years, so the birthday's month
// does not matter here.
func AgeInYear(birthYear, year int) int {
	if year < birthYear {
		return 0
	}
	return year - birthYear
}

// YearsInclusive counts the calendar years in [start, end], both inclusive.
// An empty or inverted range counts zero.
func YearsInclusive(start, end int) int {
	if end < start {
		return 0
	}
	return end - start + 1
}
