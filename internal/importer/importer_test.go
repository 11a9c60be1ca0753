package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"customer-accounts/internal/credential"
	"customer-accounts/internal/domain"
	"customer-accounts/internal/repository/memory"
	customersvc "customer-accounts/internal/service/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type stubRegistrar struct {
	items []customersvc.RegisterInput
	err   error
}

func (s *stubRegistrar) Register(_ context.Context, in customersvc.RegisterInput) (*domain.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, in)
	return &domain.Customer{ID: "c-" + in.Email, Email: in.Email}, nil
}

const sample = `email,first_name,last_name,phone,password,house_colony,landmark,city,state,pincode,country
asha@example.com,Asha,Rao,9000000001,pw-one,12 MG Road,Near temple,Bengaluru,KA,560001,
,,,,,7 Lake View,,Pune,MH,411001,
ravi@example.com,Ravi,Iyer,9000000002, pw two ,,,,,,
meera@example.com,Meera,Nair,9000000003,pw-three,4 Hill Road,,Shimla,HP,171001,Nepal
`

func TestCSVImporter_GroupsContinuationRows(t *testing.T) {
	reg := &stubRegistrar{}
	res, err := NewCSVImporter(strings.NewReader(sample), reg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 3}, res)
	require.Len(t, reg.items, 3)

	asha := reg.items[0]
	assert.Equal(t, "Asha", asha.FirstName)
	require.Len(t, asha.Addresses, 2)
	require.NotNil(t, asha.Addresses[0].Landmark)
	assert.Equal(t, "Near temple", *asha.Addresses[0].Landmark)
	assert.Nil(t, asha.Addresses[1].Landmark)
	assert.Equal(t, "Pune", asha.Addresses[1].City)

	ravi := reg.items[1]
	assert.Empty(t, ravi.Addresses)
	assert.Equal(t, " pw two ", ravi.Password)

	assert.Equal(t, "Nepal", reg.items[2].Addresses[0].Country)
}

func TestCSVImporter_SkipsConflicts(t *testing.T) {
	store := memory.New()
	svc := customersvc.New(store.Customers(), credential.New(bcrypt.MinCost), nil)

	_, err := svc.Register(context.Background(), customersvc.RegisterInput{
		FirstName: "Existing", LastName: "User", Email: "ravi@example.com", Phone: "9999999999", Password: "x",
	})
	require.NoError(t, err)

	res, err := NewCSVImporter(strings.NewReader(sample), svc, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2, Skipped: 1}, res)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	login, err := svc.Login(context.Background(), "asha@example.com", "pw-one")
	require.NoError(t, err)
	asha, err := svc.Get(context.Background(), login.CustomerID)
	require.NoError(t, err)
	assert.Len(t, asha.Addresses, 2)
	assert.Equal(t, domain.DefaultCountry, asha.Addresses[0].Country)
}

func TestCSVImporter_AbortsOnOtherErrors(t *testing.T) {
	reg := &stubRegistrar{err: errors.New("db down")}
	_, err := NewCSVImporter(strings.NewReader(sample), reg, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asha@example.com")
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVImporter_RejectsMissingEmailColumn(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("name,phone\nA,1\n"), &stubRegistrar{}, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestCSVImporter_WarnsOnLeadingAddressRows(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	input := `email,first_name,last_name,phone,password,house_colony,landmark,city,state,pincode,country
,,,,,7 Lake View,,Pune,MH,411001,
,,,,,,,,,,
asha@example.com,Asha,Rao,9000000001,pw-one,12 MG Road,,Bengaluru,KA,560001,
`
	reg := &stubRegistrar{}
	res, err := NewCSVImporter(strings.NewReader(input), reg, zap.New(core)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)
	require.Len(t, reg.items, 1)
	assert.Len(t, reg.items[0].Addresses, 1)

	warnings := logs.FilterMessage("import: address row without customer skipped").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["line"])
}
