// internal/writers/rows_test.go
package writers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cohort-core/cohortdef"
	"cohort-core/sequence"

	"github.com/stretchr/testify/require"
)

// failWriter rejects every write, like a full disk.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }

func TestStartLabelWriterCSV(t *testing.T) {
	var buf bytes.Buffer
	in, done, err := StartLabelWriter(&buf, "csv", true, 4)
	require.NoError(t, err)

	in <- cohortdef.Label{PatientID: "100", Class: 1, FirstSupply: time.Date(2012, 3, 17, 0, 0, 0, 0, time.UTC)}
	in <- cohortdef.Label{PatientID: "101", Class: 0, FirstSupply: time.Date(2012, 1, 2, 0, 0, 0, 0, time.UTC)}
	close(in)
	require.NoError(t, <-done)

	want := "PIN,CLASS,SPPLY_DT\n100,1,17Mar2012\n101,0,02Jan2012\n"
	require.Equal(t, want, buf.String())
}

func TestStartLabelWriterNoHeader(t *testing.T) {
	var buf bytes.Buffer
	in, done, err := StartLabelWriter(&buf, "csv", false, 4)
	require.NoError(t, err)
	close(in)
	require.NoError(t, <-done)
	require.Empty(t, buf.String())
}

func TestStartSequenceWriterJSONL(t *testing.T) {
	var buf bytes.Buffer
	in, done, err := StartSequenceWriter(&buf, "jsonl", true, 4)
	require.NoError(t, err)

	in <- sequence.Row{ID: "100", Seq: "23 7 104", EncodedSeq: "23 0 104", Length: 2, AvgAge: 61.5, LastPINState: "NSW", Sex: "F"}
	close(in)
	require.NoError(t, <-done)

	require.Contains(t, buf.String(), `"pin":"100"`)
	require.Contains(t, buf.String(), `"avg_age":61.5`)
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestStartLabelWriterErrorDoesNotBlockProducer(t *testing.T) {
	in, done, err := StartLabelWriter(failWriter{}, "csv", true, 4)
	require.NoError(t, err)

	fed := make(chan struct{})
	go func() {
		defer close(fed)
		for i := 0; i < 1000; i++ {
			in <- cohortdef.Label{
				PatientID:   fmt.Sprintf("%040d", i),
				FirstSupply: time.Date(2012, 1, 2, 0, 0, 0, 0, time.UTC),
			}
		}
		close(in)
	}()

	select {
	case <-fed:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked after writer error")
	}
	require.Error(t, <-done)
}

func TestStartSequenceWriterJSONLErrorDoesNotBlockProducer(t *testing.T) {
	in, done, err := StartSequenceWriter(failWriter{}, "jsonl", true, 4)
	require.NoError(t, err)

	row := sequence.Row{ID: "100", Seq: strings.Repeat("23 7 ", 60), Length: 60}
	fed := make(chan struct{})
	go func() {
		defer close(fed)
		for i := 0; i < 1000; i++ {
			in <- row
		}
		close(in)
	}()

	select {
	case <-fed:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked after writer error")
	}
	require.Error(t, <-done)
}

func TestStartWriterUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := StartLabelWriter(&buf, "xml", true, 4)
	require.Error(t, err)
	_, _, err = StartSequenceWriter(&buf, "xml", true, 4)
	require.Error(t, err)
}
