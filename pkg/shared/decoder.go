package shared

import (
	"github.com/go-playground/form"
)

// Decoder decodes query strings and form bodies into tagged structs.
var Decoder = form.NewDecoder()

func init() {
	Decoder.SetTagName("form")
}
