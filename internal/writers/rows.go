// internal/writers/rows.go
package writers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"cohort-core/claims"
	"cohort-core/cohortdef"
	"cohort-core/sequence"

	"cohort/internal/jsonlutil"
	"cohort/pkg/api"
)

// LabelHeader is the column layout of the labels CSV consumed downstream.
var LabelHeader = []string{"PIN", "CLASS", "SPPLY_DT"}

// SequenceHeader is the column layout of the extracted raw-data CSV.
var SequenceHeader = []string{"PIN", "SEQ", "ENC_SEQ", "SEQ_LENGTH", "AVG_AGE", "PINSTATE", "SEX"}

func labelRecord(l cohortdef.Label) []string {
	return []string{l.PatientID, strconv.Itoa(l.Class), l.FirstSupply.Format(claims.DateLayout)}
}

func sequenceRecord(r sequence.Row) []string {
	return []string{
		r.ID, r.Seq, r.EncodedSeq,
		strconv.Itoa(r.Length),
		strconv.FormatFloat(r.AvgAge, 'f', 2, 64),
		r.LastPINState, r.Sex,
	}
}

// startRecordWriter streams records of type T as csv/tsv rows.
func startRecordWriter[T any](out io.Writer, comma rune, header []string, withHeader bool, bufSize int, record func(T) []string) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)
	go func() {
		cw := csv.NewWriter(out)
		cw.Comma = comma
		// After a write error the producer may still be feeding rows;
		// drain in so it never blocks on a dead writer.
		fail := func(err error) {
			done <- err
			for range in {
			}
		}
		if withHeader {
			if err := cw.Write(header); err != nil && !IsBrokenPipe(err) {
				fail(err)
				return
			}
		}
		for v := range in {
			if err := cw.Write(record(v)); err != nil && !IsBrokenPipe(err) {
				fail(err)
				return
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil && !IsBrokenPipe(err) {
			done <- err
			return
		}
		done <- nil
	}()
	return in, done
}

// StartLabelWriter spins up a writer goroutine for cohort labels.
func StartLabelWriter(out io.Writer, format string, header bool, bufSize int) (chan<- cohortdef.Label, <-chan error, error) {
	switch format {
	case "csv":
		in, done := startRecordWriter(out, ',', LabelHeader, header, bufSize, labelRecord)
		return in, done, nil
	case "tsv":
		in, done := startRecordWriter(out, '\t', LabelHeader, header, bufSize, labelRecord)
		return in, done, nil
	case "jsonl":
		in, done := jsonlutil.Start(out, bufSize, func(enc *json.Encoder, l cohortdef.Label) error {
			return enc.Encode(api.LabelV1{
				PIN:      l.PatientID,
				Class:    l.Class,
				SupplyDt: l.FirstSupply.Format(claims.DateLayout),
			})
		}, IsBrokenPipe)
		return in, done, nil
	}
	return nil, nil, fmt.Errorf("unknown label format %q", format)
}

// StartSequenceWriter spins up a writer goroutine for extracted sequences.
func StartSequenceWriter(out io.Writer, format string, header bool, bufSize int) (chan<- sequence.Row, <-chan error, error) {
	switch format {
	case "csv":
		in, done := startRecordWriter(out, ',', SequenceHeader, header, bufSize, sequenceRecord)
		return in, done, nil
	case "tsv":
		in, done := startRecordWriter(out, '\t', SequenceHeader, header, bufSize, sequenceRecord)
		return in, done, nil
	case "jsonl":
		in, done := jsonlutil.Start(out, bufSize, func(enc *json.Encoder, r sequence.Row) error {
			return enc.Encode(api.SequenceRowV1{
				PIN: r.ID, Seq: r.Seq, EncSeq: r.EncodedSeq,
				SeqLength: r.Length, AvgAge: r.AvgAge,
				PINState: r.LastPINState, Sex: r.Sex,
			})
		}, IsBrokenPipe)
		return in, done, nil
	}
	return nil, nil, fmt.Errorf("unknown sequence format %q", format)
}
