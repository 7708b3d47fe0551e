package test

import (
	"math/rand"
	"strings"
)

const validTokens = "def|extern|foo|bar|x|y|z|fib1|(|)|,|;|+|-|*|<|1|42|3.14|.5|1.2.3|# a comment running to the end of the line\n|\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, "|")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
