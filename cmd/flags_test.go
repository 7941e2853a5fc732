package cmd

import (
	"reflect"
	"testing"
	"time"

	"github.com/relloyd/ctadmin/tracking"
	"github.com/spf13/cobra"
)

func TestGetCliFlag(t *testing.T) {
	resetTwelveFactorMode(t)
	fnGetConfig := func(key string, out interface{}) error {
		return nil
	}
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	expected := "envTest"
	d := "myDefault"
	// Test 1 - test default value applied to mock CLI flag.
	got := switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d { // if no default was applied...
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag", got.val)
	}
	// Test 2 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true // enable twelveFactorMode so that env variables are read.
	t.Setenv(mockEnvVar, "")
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d {
		t.Fatalf("test 2 failed: expected default value (%v) to be applied to mock CLI flag fetched via environment variable (%v)", got.val, mockEnvVar)
	}
	// Test 3 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	t.Setenv(mockEnvVar, expected)
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != expected {
		t.Fatalf("test 3 failed: expected value (%v) to be applied to mock CLI flag (%v) fetched from environment variable (%v); got: %v", expected, flagName, mockEnvVar, got.val)
	}
	// Test 4 - values found in config are used ahead of the default.
	twelveFactorMode = false
	got = switches.getCliFlag(flagName, d, func(key string, out interface{}) error {
		*(out.(*string)) = "fromConfig"
		return nil
	})
	if got.val != "fromConfig" {
		t.Fatalf("test 4 failed: expected the config value; got %v", got.val)
	}
}

func TestGetCliFlagPanicsForUnknownFlags(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic for an unregistered flag")
		}
	}()
	switches.getCliFlag("no-such-flag", "", func(key string, out interface{}) error { return nil })
}

func TestFlagNameToEnvVar(t *testing.T) {
	if got := flagNameToEnvVar("tracking-connection"); got != "CT_TRACKING_CONNECTION" {
		t.Fatalf("expected CT_TRACKING_CONNECTION; got %v", got)
	}
}

func TestAddFlag(t *testing.T) {
	resetTwelveFactorMode(t)
	// Test 1 - defaults are applied to Cobra flags.
	c := &cobra.Command{Use: "test"}
	var tables []string
	var cascade bool
	var port int
	switches.addFlag(c, &tables, "tables", "a, b", false, "")
	switches.addFlag(c, &cascade, "cascade", "yes", false, "")
	switches.addFlag(c, &port, "port", "8081", false, "")
	if !reflect.DeepEqual(tables, []string{"a", "b"}) {
		t.Fatalf("test 1 failed: unexpected tables %v", tables)
	}
	if !cascade || port != 8081 {
		t.Fatalf("test 1 failed: got cascade %v, port %v", cascade, port)
	}
	if f := c.Flags().Lookup("cascade"); f == nil || !f.Changed {
		t.Fatal("test 1 failed: expected flag cascade to be registered and set")
	}
	if err := c.Flags().Parse([]string{"--tables", "x,y,z", "--port", "9000"}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tables, []string{"x", "y", "z"}) || port != 9000 {
		t.Fatalf("test 1 failed: unexpected parsed values %v, %v", tables, port)
	}

	// Test 2 - values are read from the environment in twelveFactorMode.
	twelveFactorMode = true
	t.Setenv("CT_TABLES", "p, q")
	t.Setenv("CT_CASCADE", "0")
	t.Setenv("CT_PROJECT", "p1")
	c = &cobra.Command{Use: "test"}
	var project string
	switches.addFlag(c, &tables, "tables", "", true, "")
	switches.addFlag(c, &cascade, "cascade", "true", false, "")
	switches.addFlag(c, &project, "project", "", true, "")
	if !reflect.DeepEqual(tables, []string{"p", "q"}) || cascade || project != "p1" {
		t.Fatalf("test 2 failed: got %v, %v, %q", tables, cascade, project)
	}
	if c.Flags().Lookup("tables") != nil {
		t.Fatal("test 2 failed: expected no Cobra flags in twelveFactorMode")
	}
}

func TestNewSchedule(t *testing.T) {
	s, err := newSchedule("", "")
	if err != nil || s != nil {
		t.Fatalf("expected no schedule; got %v, %v", s, err)
	}
	s, err = newSchedule("30 6 * * *", "2024-08-19T06:30")
	if err != nil {
		t.Fatal(err)
	}
	if s.Cron != "30 6 * * *" || !s.Start.Equal(time.Date(2024, 8, 19, 6, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected schedule %+v", s)
	}
	if _, err = newSchedule("30 6 * * *", "19/08/2024"); err == nil {
		t.Fatal("expected an error for a bad start time")
	}
}

func TestProjectFlagsApply(t *testing.T) {
	f := projectFlags{transferCron: "0 1 * * *"}
	p := &tracking.Project{ID: "p1"}
	if err := f.apply(p); err != nil {
		t.Fatal(err)
	}
	if p.UpdateSchedule != nil {
		t.Fatalf("expected no update schedule; got %+v", p.UpdateSchedule)
	}
	if p.TransferSchedule == nil || p.TransferSchedule.Cron != "0 1 * * *" || !p.TransferSchedule.Start.IsZero() {
		t.Fatalf("unexpected transfer schedule %+v", p.TransferSchedule)
	}
}
