package sitepass

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBatch(t *testing.T) {
	jobs := []Job{
		{Site: "example.com", Digest: mustHex(t, sha256Hex), Rule: DefaultRule},
		{Site: "zeros", Digest: make([]byte, 20), Rule: DigitRule},
		{Site: "example.com", Digest: mustHex(t, sha1Hex), Rule: DigitRule},
		{Site: "ones", Digest: bytes.Repeat([]byte{0xff}, 20), Rule: DefaultRule},
	}
	b := &Batch{Policy: Truncate, Workers: 2, Logger: zaptest.NewLogger(t)}
	results, err := b.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	assert.Equal(t, "/HF$EzUBqwFxSayIgYG2wP5W>8UNfU", results[0].Password)
	assert.ErrorIs(t, results[1].Err, ErrRequirementUnmet)
	assert.Equal(t, "Qz~d5FFEqnWF", results[2].Password)
	assert.Equal(t, "Icd3-tHPj6fdZcS~5dJITL7wai3gm8", results[3].Password)
	for i, r := range results {
		assert.Equal(t, jobs[i].Site, r.Site)
	}
}

// TestBatchMatchesDerive runs many jobs at once and compares against sequential derivation.
func TestBatchMatchesDerive(t *testing.T) {
	var jobs []Job
	for i := 0; i < 64; i++ {
		digest := bytes.Repeat([]byte{byte(i), byte(3 * i), 0x77}, 11)
		jobs = append(jobs, Job{Site: string(rune('a' + i%26)), Digest: digest, Rule: DigitRule})
	}
	results, err := (&Batch{}).Run(context.Background(), jobs)
	require.NoError(t, err)
	for i, job := range jobs {
		pw, err := Derive(job.Digest, job.Rule, Strict)
		if err != nil {
			require.Error(t, results[i].Err)
			assert.Equal(t, err.Error(), results[i].Err.Error())
			continue
		}
		assert.NoError(t, results[i].Err)
		assert.Equal(t, pw, results[i].Password)
	}
}

func TestBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Batch{}).Run(ctx, []Job{{Site: "example.com", Digest: mustHex(t, sha256Hex), Rule: DefaultRule}})
	assert.ErrorIs(t, err, context.Canceled)
}
