package remote

type EmptyRequest struct {
}

type EmptyResponse struct {
}

type GeometryResponse struct {
	Width  int
	Height int
}

type WriteFrameRequest struct {
	Frame []byte
}
