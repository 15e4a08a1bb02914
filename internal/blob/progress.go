package blob

import "io"

// progressReader reports cumulative bytes read against the expected total.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	report      ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		p.report(p.transferred, p.total)
	}
	return n, err
}
