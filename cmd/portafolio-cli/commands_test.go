package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_Table(t *testing.T) {
	out, err := run(t, "generate", "--risk", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "Risk level: low")
	assert.Contains(t, out, "expected return: 5.0%")
	assert.Contains(t, out, "TLT")
	assert.Contains(t, out, "35.00%")
	assert.NotContains(t, out, "AMOUNT")
}

func TestGenerate_JSONWithAmount(t *testing.T) {
	out, err := run(t, "generate", "--risk", "HIGH", "--amount", "1000", "--json")
	require.NoError(t, err)

	var p struct {
		RiskLevel string `json:"risk_level"`
		Assets    []struct {
			Ticker        string `json:"ticker"`
			AllocationPct string `json:"allocation_pct"`
			Amount        string `json:"amount"`
		} `json:"assets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "high", p.RiskLevel)
	require.Len(t, p.Assets, 10)
	assert.Equal(t, "TLT", p.Assets[0].Ticker)
	assert.Equal(t, "18", p.Assets[0].AllocationPct)
	assert.Equal(t, "180", p.Assets[0].Amount)
}

func TestGenerate_UnknownTier(t *testing.T) {
	out, err := run(t, "generate", "--risk", "yolo")
	require.NoError(t, err)
	assert.Contains(t, out, "Risk level: medium")

	_, err = run(t, "generate", "--risk", "yolo", "--strict")
	assert.Error(t, err)

	_, err = run(t, "generate", "--amount=-1")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "hash-password", "--cost", "4", "secret123")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")))

	_, err = run(t, "hash-password")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "portafolio-cli "))
}
