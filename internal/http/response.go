package http

import "net/http"

type response struct {
	status  int
	headers map[string]string
	// body is encoded as JSON; nil means no body.
	body any
}

func ok(body any) response {
	return response{status: http.StatusOK, body: body}
}

func created(location string, body any) response {
	return response{
		status:  http.StatusCreated,
		headers: map[string]string{"Location": location},
		body:    body,
	}
}

func noContent() response {
	return response{status: http.StatusNoContent}
}
