package util

// DupStrings dups ss.
func DupStrings(ss []string) []string {
	dst := make([]string, len(ss))
	copy(dst, ss)
	return dst
}
