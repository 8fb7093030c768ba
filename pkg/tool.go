package pkg

// Contains check source have target
func Contains(slice []string, val string) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// AppendIfNotExists appends val unless it is already present
func AppendIfNotExists(list []string, val string) []string {
	if Contains(list, val) {
		return list
	}
	return append(list, val)
}
