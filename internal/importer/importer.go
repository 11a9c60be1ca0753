package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	addresssvc "customer-accounts/internal/service/address"
	customersvc "customer-accounts/internal/service/customer"
	"go.uber.org/zap"
)

// Registrar registers one customer with its addresses.
type Registrar interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
}

// Result counts what a run did.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads customer CSV exports and registers each customer.
//
// Expected columns: email, first_name, last_name, phone, password,
// house_colony, landmark, city, state, pincode, country. A row with an email
// starts a new customer; following rows without one add addresses to it.
type CSVImporter struct {
	reader    *csv.Reader
	registrar Registrar
	logger    *zap.Logger
}

func NewCSVImporter(r io.Reader, registrar Registrar, log *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:    csvr,
		registrar: registrar,
		logger:    logger.OrNop(log),
	}
}

type csvRow struct {
	line     int
	customer customersvc.RegisterInput
}

// Run registers every customer in the file. Customers whose email or phone
// already exists are skipped; any other failure stops the run.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["email"]; !ok {
		return res, errors.New("read headers: missing email column")
	}

	var current *csvRow
	flush := func() error {
		if current == nil {
			return nil
		}
		skipped, err := i.save(ctx, current)
		if err != nil {
			return err
		}
		if skipped {
			res.Skipped++
		} else {
			res.Imported++
		}
		return nil
	}

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}

		email := pick(record, index, "email")
		addr, hasAddr := parseAddress(record, index)

		if email != "" {
			if err := flush(); err != nil {
				return res, err
			}
			current = &csvRow{line: line, customer: customersvc.RegisterInput{
				Email:     email,
				FirstName: pick(record, index, "first_name"),
				LastName:  pick(record, index, "last_name"),
				Phone:     pick(record, index, "phone"),
				Password:  pickRaw(record, index, "password"),
			}}
			if hasAddr {
				current.customer.Addresses = append(current.customer.Addresses, addr)
			}
			continue
		}

		// Continuation rows add addresses to the current customer.
		if !hasAddr {
			continue
		}
		if current == nil {
			i.logger.Warn("import: address row without customer skipped", zap.Int("line", line))
			continue
		}
		current.customer.Addresses = append(current.customer.Addresses, addr)
	}

	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) (skipped bool, err error) {
	created, err := i.registrar.Register(ctx, row.customer)
	if errors.Is(err, domain.ErrConflict) {
		i.logger.Warn("import: customer skipped",
			zap.Int("line", row.line),
			zap.String("email", row.customer.Email),
			zap.String("reason", err.Error()),
		)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("register customer %q (line %d): %w", row.customer.Email, row.line, err)
	}
	i.logger.Info("import: customer registered",
		zap.Int("line", row.line),
		zap.String("customer_id", created.ID),
		zap.Int("addresses", len(created.Addresses)),
	)
	return false, nil
}

func parseAddress(record []string, index map[string]int) (addresssvc.Input, bool) {
	in := addresssvc.Input{
		HouseColony: pick(record, index, "house_colony"),
		City:        pick(record, index, "city"),
		State:       pick(record, index, "state"),
		Pincode:     pick(record, index, "pincode"),
		Country:     pick(record, index, "country"),
	}
	if lm := pick(record, index, "landmark"); lm != "" {
		in.Landmark = &lm
	}
	present := in.HouseColony != "" || in.City != "" || in.State != "" || in.Pincode != "" || in.Landmark != nil
	return in, present
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	return strings.TrimSpace(pickRaw(record, index, key))
}

// pickRaw keeps surrounding whitespace; passwords are taken verbatim.
func pickRaw(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return record[pos]
}
