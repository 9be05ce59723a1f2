package tokenizer

import "regexp"

// Words splits text into words or numbers, keeping contractions whole.
var reToken = regexp.MustCompile(`[\pL]+(?:[’'][\pL]+)?|\pN+`)

func Words(text string) []string {
	return reToken.FindAllString(text, -1)
}
