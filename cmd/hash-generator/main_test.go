package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
)

func TestRunHashesArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-cost", "4", "secret1", "тест123"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	hashes := strings.Fields(stdout.String())
	require.Len(t, hashes, 2)

	verifier := auth.NewBcrypt(4)
	assert.NoError(t, verifier.Compare(hashes[0], "secret1"))
	assert.NoError(t, verifier.Compare(hashes[1], "тест123"))
}

func TestRunReadsStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-cost", "4"}, strings.NewReader("secret1\n\nsecret2\n"), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Len(t, strings.Fields(stdout.String()), 2)
}

func TestRunRejectsBadPasswords(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-cost", "4", "short", strings.Repeat("x", 73), "secret1"},
		strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Len(t, strings.Fields(stdout.String()), 1)
	assert.Contains(t, stderr.String(), "password 1")
	assert.Contains(t, stderr.String(), "password 2")
}

func TestRunWithoutInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-bogus"}, strings.NewReader(""), &stdout, &stderr))
}
