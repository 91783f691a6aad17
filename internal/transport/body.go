package transport

import (
	"net/url"

	"github.com/bytedance/sonic"
)

// Body is a request body together with its content type.
type Body interface {
	ContentType() string
	Encode() ([]byte, error)
}

type jsonBody struct {
	value any
}

// JSON encodes v as a JSON request body.
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) ContentType() string { return "application/json" }

func (b jsonBody) Encode() ([]byte, error) {
	return sonic.Marshal(b.value)
}

type formBody struct {
	values url.Values
}

// Form encodes values as an application/x-www-form-urlencoded body.
func Form(values url.Values) Body {
	return formBody{values: values}
}

func (b formBody) ContentType() string { return "application/x-www-form-urlencoded" }

func (b formBody) Encode() ([]byte, error) {
	return []byte(b.values.Encode()), nil
}
