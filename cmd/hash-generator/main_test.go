package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunPrintsHash(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("s3cret\n"), &out, 4, "", ""))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
}

func TestRunPrintsAdminInsert(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("rootpw"), &out, 4, "o'root", "root@example.com"))

	sql := out.String()
	assert.Contains(t, sql, "INSERT INTO users")
	assert.Contains(t, sql, "'o''root'")
	assert.Contains(t, sql, "'ADMIN'")
	assert.NotContains(t, sql, "rootpw")
}

func TestRunRejectsInvalidInput(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(strings.NewReader("pw\n"), &out, 4, "", ""), "too short")
	assert.Error(t, run(strings.NewReader("rootpw\n"), &out, 4, "root", "not-an-email"))
	assert.Empty(t, out.String())
}
