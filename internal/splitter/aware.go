// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package splitter

// SplitAware splits text on ';' while skipping terminators that appear inside
// single-quoted strings, double-quoted identifiers, dollar-quoted bodies
// ($$ ... $$ or $tag$ ... $tag$), "--" line comments and /* */ block comments.
// Fragments are filtered the same way as Split.
func SplitAware(text string) []string {
	var fragments []string
	n := len(text)
	start := 0
	inSingle, inDouble := false, false
	inLineComment, inBlockComment := false, false
	dollarTag := ""

	for i := 0; i < n; i++ {
		ch := text[i]
		switch {
		case inLineComment:
			if ch == '\n' {
				inLineComment = false
			}
			continue
		case inBlockComment:
			if ch == '*' && i+1 < n && text[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		case dollarTag != "":
			if len(dollarTag) <= n-i && text[i:i+len(dollarTag)] == dollarTag {
				i += len(dollarTag) - 1
				dollarTag = ""
			}
			continue
		case inSingle:
			if ch == '\'' {
				// '' is an escaped quote
				if i+1 < n && text[i+1] == '\'' {
					i++
				} else {
					inSingle = false
				}
			}
			continue
		case inDouble:
			if ch == '"' {
				inDouble = false
			}
			continue
		}

		switch ch {
		case '-':
			if i+1 < n && text[i+1] == '-' {
				inLineComment = true
				i++
			}
		case '/':
			if i+1 < n && text[i+1] == '*' {
				inBlockComment = true
				i++
			}
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case '$':
			// '$' inside an identifier such as a$b or after a parameter
			// number ($1) does not open a quote
			if i > 0 && (isDollarTagChar(text[i-1]) || text[i-1] == '$') {
				continue
			}
			j := i + 1
			if j < n && text[j] >= '0' && text[j] <= '9' {
				continue
			}
			for j < n && isDollarTagChar(text[j]) {
				j++
			}
			if j < n && text[j] == '$' {
				dollarTag = text[i : j+1]
				i = j
			}
		case ';':
			fragments = append(fragments, text[start:i])
			start = i + 1
		}
	}
	if start < n {
		fragments = append(fragments, text[start:])
	}
	return filter(fragments)
}

func isDollarTagChar(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}
