package apiclient

import "io"

// Progress describes one transfer progress event. Total is the expected
// number of bytes, or -1 when unknown; LengthComputable reports whether
// Total is meaningful.
type Progress struct {
	Loaded           int64
	Total            int64
	LengthComputable bool
}

// progressReader is an io.Reader, reporting cumulative transfer
// progress after every read. It wraps a request body for uploads
// and a response body for downloads.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	report func(Progress)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.loaded += int64(n)
		pr.report(Progress{
			Loaded:           pr.loaded,
			Total:            pr.total,
			LengthComputable: pr.total >= 0,
		})
	}

	return n, err
}
