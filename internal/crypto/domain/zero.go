package domain

// Zero overwrites every given buffer with zeros. Key material and decoded
// plaintexts are passed here once they are no longer needed.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
