package csvingest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

func validSchema() csvingest.Schema {
	return csvingest.Schema{{Name: "LocationID", Type: csvingest.TypeInteger}}
}

func TestLoadRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     csvingest.LoadRequest
		mode    csvingest.LoadMode
		wantErr string
	}{
		{
			name: "valid replace ignores batch size",
			req:  csvingest.LoadRequest{Source: "zones.csv", Table: "zones", Schema: validSchema()},
			mode: csvingest.ModeReplace,
		},
		{
			name: "valid append",
			req:  csvingest.LoadRequest{Source: "t.csv", Table: "t", Schema: validSchema(), BatchSize: 10},
			mode: csvingest.ModeAppend,
		},
		{
			name:    "append with zero batch size",
			req:     csvingest.LoadRequest{Source: "t.csv", Table: "t", Schema: validSchema()},
			mode:    csvingest.ModeAppend,
			wantErr: "batch size must be positive",
		},
		{
			name:    "append with negative batch size",
			req:     csvingest.LoadRequest{Source: "t.csv", Table: "t", Schema: validSchema(), BatchSize: -5},
			mode:    csvingest.ModeAppend,
			wantErr: "got -5",
		},
		{
			name:    "missing source and table",
			req:     csvingest.LoadRequest{Schema: validSchema()},
			mode:    csvingest.ModeReplace,
			wantErr: "source is required",
		},
		{
			name:    "empty schema",
			req:     csvingest.LoadRequest{Source: "a", Table: "b"},
			mode:    csvingest.ModeReplace,
			wantErr: "no columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.mode)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
			if !errors.Is(err, csvingest.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestParseDriver(t *testing.T) {
	for in, want := range map[string]csvingest.Driver{
		"":           csvingest.DriverPostgres,
		"postgresql": csvingest.DriverPostgres,
		"MySQL":      csvingest.DriverMySQL,
		"sqlite3":    csvingest.DriverSQLite,
	} {
		got, err := csvingest.ParseDriver(in)
		if err != nil || got != want {
			t.Errorf("ParseDriver(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := csvingest.ParseDriver("oracle"); !errors.Is(err, csvingest.ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}

	if csvingest.DriverMySQL.DefaultPort() != 3306 || csvingest.DriverPostgres.DefaultPort() != 5432 {
		t.Error("unexpected default ports")
	}
}

func TestParseAuthMethod(t *testing.T) {
	for in, want := range map[string]csvingest.AuthMethod{
		"":       csvingest.AuthMethodStandard,
		"aws":    csvingest.AuthMethodAWSIAM,
		"google": csvingest.AuthMethodGoogleIAM,
		"azure":  csvingest.AuthMethodAzureEntraID,
	} {
		got, err := csvingest.ParseAuthMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseAuthMethod(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := csvingest.ParseAuthMethod("kerberos"); !errors.Is(err, csvingest.ErrUnsupportedAuthMethod) {
		t.Errorf("expected ErrUnsupportedAuthMethod, got %v", err)
	}
}

func TestConnectionConfig_Validate(t *testing.T) {
	ok := csvingest.ConnectionConfig{Driver: csvingest.DriverPostgres, Host: "localhost", Port: 5432, Database: "ny_taxi"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sqlite := csvingest.ConnectionConfig{Driver: csvingest.DriverSQLite, Database: "/tmp/x.db"}
	if err := sqlite.Validate(); err != nil {
		t.Fatalf("sqlite needs no host: %v", err)
	}

	bad := csvingest.ConnectionConfig{Driver: csvingest.DriverMySQL, Port: 70000, AuthMethod: csvingest.AuthMethodAWSIAM}
	err := bad.Validate()
	if !errors.Is(err, csvingest.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"database name", "host", "out of range", "requires the postgres driver"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
