// Copyright © 2025 The hissp authors

package basic_test

import (
	"testing"

	"github.com/vishalbelsare/hissp/hissptest"
)

func TestDefine(t *testing.T) {
	hissptest.RunTestSuite(t, hissptest.TestSuite{
		{"define", hissptest.TestSequence{
			{`(define x 1)`, `()`, ``},
			{`x`, `1`, ``},
			{`(define x (add x 1))`, `()`, ``},
			{`x`, `2`, ``},
		}},
		{"defmacro", hissptest.TestSequence{
			{`(defmacro nine () "returns nine" 9)`, `()`, ``},
			{`(nine)`, `9`, ``},
			{`(define x (nine))`, `()`, ``},
			{`x`, `9`, ``},
		}},
	})
}

func TestSequencing(t *testing.T) {
	hissptest.RunTestSuite(t, hissptest.TestSuite{
		{"progn", hissptest.TestSequence{
			{`(progn)`, `()`, ``},
			{`(progn 1 2 3)`, `3`, ``},
			{`(progn (print "a" :) 2)`, `2`, "a\n"},
		}},
		{"let", hissptest.TestSequence{
			{`(let () 1)`, `1`, ``},
			{`(let ((x 1)) x)`, `1`, ``},
			{`(let ((x 1) (y (add x 1))) (add x y))`, `3`, ``},
			{`(let ((x 1)) (let ((x 2)) x))`, `2`, ``},
		}},
		{"thread", hissptest.TestSequence{
			{`(-> 7)`, `7`, ``},
			{`(-> 2 (add 1) (mul 3))`, `9`, ``},
			{`(-> 0 not)`, `true`, ``},
		}},
	})
}

func TestConditionals(t *testing.T) {
	hissptest.RunTestSuite(t, hissptest.TestSuite{
		{"if", hissptest.TestSequence{
			{`(if true 1 2)`, `1`, ``},
			{`(if false 1 2)`, `2`, ``},
			{`(if false 1)`, `()`, ``},
			{`(if 0 (print "no" :) 2)`, `2`, ``},
		}},
		{"when-unless", hissptest.TestSequence{
			{`(when true (print "yes" :) 1)`, `1`, "yes\n"},
			{`(when false (print "no" :) 1)`, `()`, ``},
			{`(unless false 1)`, `1`, ``},
			{`(unless true (print "no" :) 1)`, `()`, ``},
		}},
		{"and-or", hissptest.TestSequence{
			{`(and)`, `true`, ``},
			{`(or)`, `false`, ``},
			{`(and 1 2 3)`, `3`, ``},
			{`(and 1 false 3)`, `false`, ``},
			{`(or false () 3)`, `3`, ``},
			{`(or 1 (print "no" :))`, `1`, ``},
		}},
	})
}

func TestMacroDocs(t *testing.T) {
	hissptest.RunTestSuite(t, hissptest.TestSuite{
		{"docstring", hissptest.TestSequence{
			{`(defmacro seven () "gives seven" 7)`, `()`, ``},
			{`(seven)`, `7`, ``},
		}},
	})
}
