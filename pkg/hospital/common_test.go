package hospital_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"liyu1981.xyz/ward-alert-service/pkg/db"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/hospital/mocks"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	pushmocks "liyu1981.xyz/ward-alert-service/pkg/push/mocks"
	"liyu1981.xyz/ward-alert-service/pkg/store"
	storemocks "liyu1981.xyz/ward-alert-service/pkg/store/mocks"
)

var errUnreachable = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("i/o timeout")}

type fixture struct {
	ctrl     *gomock.Controller
	h        *hospital.Hospital
	notifier *pushmocks.MockNotifier
	bus      *mocks.MockAlertPublisher
	local    *store.KVBackend
}

// newFixture wires a hospital over primary with an in-memory local fallback.
// A nil primary means the shared in-memory sqlite database. Bus events are
// accepted unless a test sets its own expectations first.
func newFixture(t *testing.T, primary store.Backend) *fixture {
	ctrl := gomock.NewController(t)

	if primary == nil {
		primary = store.NewSQLBackend(db.GetInstance(db.UseMemorySqliteDialector()))
	}
	local := store.NewKVBackend(store.NewMemoryKV())

	notifier := pushmocks.NewMockNotifier(ctrl)
	bus := mocks.NewMockAlertPublisher(ctrl)

	h := (&hospital.Hospital{
		Store:     store.NewGateway(primary, local, time.Second),
		Notifier:  notifier,
		Bus:       bus,
		PublicURL: "https://ward.example.org",
		HashCost:  bcrypt.MinCost,
	}).WithDefaultServices()

	return &fixture{ctrl: ctrl, h: h, notifier: notifier, bus: bus, local: local}
}

// isolatedPrimary is a SQL backend on its own in-memory database, for tests
// that need fixed ids such as bed "101".
func isolatedPrimary(t *testing.T) store.Backend {
	conn, err := db.Open(db.UseNamedMemorySqliteDialector("ward-"+uuid.NewString()), db.DomainModels...)
	require.NoError(t, err)
	return store.NewSQLBackend(conn)
}

// unreachablePrimary fails every call the way a dropped network does.
func unreachablePrimary(ctrl *gomock.Controller) store.Backend {
	primary := storemocks.NewMockBackend(ctrl)
	primary.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnreachable).AnyTimes()
	primary.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnreachable).AnyTimes()
	primary.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnreachable).AnyTimes()
	primary.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnreachable).AnyTimes()
	primary.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Return(errUnreachable).AnyTimes()
	primary.EXPECT().Ping(gomock.Any()).Return(errUnreachable).AnyTimes()
	return primary
}

func (f *fixture) acceptBusEvents() {
	f.bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (f *fixture) seedWard(t *testing.T) *models.Ward {
	ward, err := f.h.Roster.CreateWard(context.Background(), hospital.WardInput{
		Name:     "Ward " + uuid.NewString()[:8],
		Location: "Building A",
		Username: "admin-" + uuid.NewString(),
		Password: "secret",
	})
	require.NoError(t, err)
	return ward
}

func (f *fixture) seedBed(t *testing.T, wardID, bedID string) *models.Bed {
	bed, err := f.h.Roster.CreateBed(context.Background(), hospital.BedInput{ID: bedID, WardID: wardID})
	require.NoError(t, err)
	return bed
}

func (f *fixture) seedNurse(t *testing.T, wardID, pushToken string) *models.Nurse {
	nurse, err := f.h.Roster.CreateNurse(context.Background(), hospital.NurseInput{
		WardID:    wardID,
		Name:      "Nurse " + uuid.NewString()[:8],
		Email:     "nurse@example.org",
		PushToken: pushToken,
	})
	require.NoError(t, err)
	return nurse
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
