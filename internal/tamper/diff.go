package tamper

import (
	"fmt"
	"strings"
)

// unifiedDiff renders a unified diff of two texts with n lines of context.
// Returns "" when the texts are line-identical.
func unifiedDiff(a, b string, n int) string {
	al := strings.Split(a, "\n")
	bl := strings.Split(b, "\n")

	ops := diffOps(al, bl)
	changed := false
	for _, op := range ops {
		if op.kind != opEqual {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- baseline\n+++ current\n")
	for _, h := range hunks(ops, n) {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.aStart+1, h.aLen, h.bStart+1, h.bLen)
		for _, op := range h.ops {
			switch op.kind {
			case opEqual:
				sb.WriteString(" " + op.line + "\n")
			case opDelete:
				sb.WriteString("-" + op.line + "\n")
			case opInsert:
				sb.WriteString("+" + op.line + "\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type diffOp struct {
	kind opKind
	line string
}

// diffOps computes an edit script via a longest-common-subsequence table.
// Document texts are short enough that the quadratic table is fine.
func diffOps(a, b []string) []diffOp {
	m, n := len(a), len(b)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{opEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{opDelete, a[i]})
			i++
		default:
			ops = append(ops, diffOp{opInsert, b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		ops = append(ops, diffOp{opDelete, a[i]})
	}
	for ; j < n; j++ {
		ops = append(ops, diffOp{opInsert, b[j]})
	}
	return ops
}

type hunk struct {
	aStart, aLen int
	bStart, bLen int
	ops          []diffOp
}

// hunks groups the edit script into unified-diff hunks with n context lines.
func hunks(ops []diffOp, n int) []hunk {
	var out []hunk
	var cur *hunk
	ai, bi := 0, 0
	pendingEqual := 0

	flush := func() {
		if cur != nil {
			// trim trailing context beyond n
			trail := 0
			for k := len(cur.ops) - 1; k >= 0 && cur.ops[k].kind == opEqual; k-- {
				trail++
			}
			if trail > n {
				drop := trail - n
				cur.ops = cur.ops[:len(cur.ops)-drop]
				cur.aLen -= drop
				cur.bLen -= drop
			}
			out = append(out, *cur)
			cur = nil
		}
	}

	var ctx []diffOp
	for _, op := range ops {
		if op.kind == opEqual {
			if cur != nil {
				cur.ops = append(cur.ops, op)
				cur.aLen++
				cur.bLen++
				pendingEqual++
				if pendingEqual > 2*n {
					flush()
					pendingEqual = 0
					ctx = nil
				}
			} else {
				ctx = append(ctx, op)
				if len(ctx) > n {
					ctx = ctx[1:]
				}
			}
			ai++
			bi++
			continue
		}

		if cur == nil {
			cur = &hunk{
				aStart: ai - len(ctx),
				bStart: bi - len(ctx),
				aLen:   len(ctx),
				bLen:   len(ctx),
				ops:    append([]diffOp(nil), ctx...),
			}
			ctx = nil
		}
		pendingEqual = 0
		cur.ops = append(cur.ops, op)
		if op.kind == opDelete {
			cur.aLen++
			ai++
		} else {
			cur.bLen++
			bi++
		}
	}
	flush()
	return out
}
