package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	curpHandler "curpkit/internal/curp/handler"
	curpService "curpkit/internal/curp/service"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
)

// errMismatch signals a negative check result through the exit code.
var errMismatch = errors.New("no match")

var batchColumns = []string{"given_name", "paternal_surname", "maternal_surname", "birth_date", "sex", "entity"}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Encode identities from a CSV file",
		Long: `Encode identities from a CSV file with the header
  given_name,paternal_surname,maternal_surname,birth_date,sex,entity
and write index,code,error rows. Rows that fail are reported individually.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			var in io.Reader = cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			requests, err := readBatchCSV(in)
			if err != nil {
				return err
			}
			svc := newService(cmd, curpService.WithBatchLimits(len(requests), concurrency))
			return runBatch(cmd, svc, requests)
		},
	}
	cmd.Flags().StringP("file", "f", "-", "CSV input, - for stdin")
	cmd.Flags().Int("concurrency", curpService.DefaultBatchConcurrency, "Items encoded at once")
	return cmd
}

func readBatchCSV(r io.Reader) ([]curpHandler.IdentityRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(batchColumns)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range batchColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("column %d must be %s", i+1, col)
		}
	}

	var out []curpHandler.IdentityRequest
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, curpHandler.IdentityRequest{
			GivenName:       rec[0],
			PaternalSurname: rec[1],
			MaternalSurname: rec[2],
			BirthDate:       rec[3],
			Sex:             rec[4],
			Entity:          rec[5],
		})
	}
	if len(out) == 0 {
		return nil, errors.New("no rows to encode")
	}
	return out, nil
}

func runBatch(cmd *cobra.Command, svc *curpService.Service, requests []curpHandler.IdentityRequest) error {
	rows := make([][]string, len(requests))
	ids := make([]curp.Identity, 0, len(requests))
	positions := make([]int, 0, len(requests))
	for i := range requests {
		if err := requests[i].Validate(); err != nil {
			rows[i] = errorRow(i, err)
			continue
		}
		ids = append(ids, requests[i].Identity())
		positions = append(positions, i)
	}

	if len(ids) > 0 {
		results, err := svc.EncodeBatch(cmd.Context(), ids)
		if err != nil {
			return err
		}
		for _, res := range results {
			index := positions[res.Index]
			if res.Err != nil {
				rows[index] = errorRow(index, res.Err)
				continue
			}
			rows[index] = []string{strconv.Itoa(index), res.Code.String(), ""}
		}
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"index", "code", "error"}); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func errorRow(index int, err error) []string {
	msg := string(dErrors.CodeOf(err))
	var de *dErrors.Error
	if errors.As(err, &de) && de.Message != "" {
		msg = de.Message
	}
	return []string{strconv.Itoa(index), "", msg}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
