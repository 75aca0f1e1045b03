// Copyright © 2025 The hissp authors

package parsecparser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishalbelsare/hissp/parser"
	"github.com/vishalbelsare/hissp/parser/parsecparser"
	"github.com/vishalbelsare/hissp/sexp"
)

var sources = []string{
	`x`,
	`:kw`,
	`ns:name`,
	`123 -4 2.5 1e3 #xff #o17`,
	`"hello\nworld"`,
	`(f a b)`,
	`(f a : k v :* xs)`,
	`'(a b (c))`,
	"`(f ,x ,@xs)",
	`(lambda (a b) (add a b))`,
	`$#tmp`,
	`_# (discarded form) kept`,
	`; comment
	(f) ; trailing
	(g)`,
	`true false ()`,
}

// The combinator reader and the recursive descent reader must agree on every
// form they both accept.
func TestCrossCheck(t *testing.T) {
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			want, err := parser.ReadString("test", src)
			require.NoError(t, err)
			got, err := parsecparser.NewReader().Read("test", strings.NewReader(src))
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assert.True(t, sexp.Equal(want[i], got[i]),
					"form %d: want %v, got %v", i, want[i], got[i])
				assert.Equal(t, want[i].GensymMark, got[i].GensymMark)
			}
		})
	}
}

func TestUnmatchedParen(t *testing.T) {
	_, err := parsecparser.NewReader().Read("test", strings.NewReader(`(f a`))
	assert.Error(t, err)
}

func TestTrailingGarbage(t *testing.T) {
	_, err := parsecparser.NewReader().Read("test", strings.NewReader(`(f) #`))
	assert.Error(t, err)
}

const benchSource = `
(defmacro swap (a b)
  ` + "`" + `(let (($#tmp ,a))
     (define ,a ,b)
     (define ,b $#tmp)))
(define x 1)
(define y 2.5)
(swap x y)
(print (-> x (add 1) (mul 3)) : sep "\t")
`

func BenchmarkParsecReader(b *testing.B) {
	r := parsecparser.NewReader()
	for i := 0; i < b.N; i++ {
		_, err := r.Read("bench", strings.NewReader(benchSource))
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDefaultReader(b *testing.B) {
	r := parser.NewReader()
	for i := 0; i < b.N; i++ {
		_, err := r.Read("bench", strings.NewReader(benchSource))
		if err != nil {
			b.Fatal(err)
		}
	}
}
