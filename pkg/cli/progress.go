package cli

import (
	"io"
	"net/http"
	"time"

	pb "github.com/schollz/progressbar/v3"
)

// progressTransport draws a download bar for every successful response body.
type progressTransport struct {
	base http.RoundTripper
	out  io.Writer
}

func (t progressTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, err
	}

	bar := pb.NewOptions64(
		resp.ContentLength,
		pb.OptionSetDescription(req.URL.Path),
		pb.OptionSetWriter(t.out),
		pb.OptionSetWidth(20),
		pb.OptionThrottle(65*time.Millisecond),
		pb.OptionShowBytes(true),
		pb.OptionShowCount(),
		pb.OptionSpinnerType(14),
		pb.OptionClearOnFinish(),
	)
	resp.Body = &progressBody{
		ReadCloser: resp.Body,
		r:          io.TeeReader(resp.Body, bar),
		bar:        bar,
	}
	return resp, nil
}

type progressBody struct {
	io.ReadCloser
	r   io.Reader
	bar *pb.ProgressBar
}

func (b *progressBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *progressBody) Close() error {
	_ = b.bar.Finish()
	return b.ReadCloser.Close()
}
