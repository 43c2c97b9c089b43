package wirelog

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	showsystem := "showsystem"
	hidesystem := "hidesystem"

	logConfig := NewDevelopmentConfig()
	logConfig.EnableSubSystem(showsystem)

	ctx := ContextWithLogConfig(context.Background(), logConfig)

	Log(ctx, LevelInfo, "First main entry")
	Log(ctx, LevelInfo, "First main entry with value : %d", 101)

	showCtx := ContextWithLogSubSystem(ctx, showsystem)
	Log(showCtx, LevelInfo, "First Sub entry")

	hideCtx := ContextWithLogSubSystem(ctx, hidesystem)
	Log(hideCtx, LevelInfo, "First Hidden Sub entry. You should not see this!")

	Log(ctx, LevelInfo, "Second main entry")

	ctxTrace1 := ContextWithLogTrace(ctx, "trace 1")
	Log(ctxTrace1, LevelInfo, "Entry with trace 1")

	ctxTrace2 := ContextWithLogTrace(ctx, "trace 2")
	Log(ctxTrace2, LevelInfo, "Entry with trace 2")
}

func TestSubSystem(t *testing.T) {
	const testSubSystem = "TestSubSystem"

	logConfig := NewProductionConfig()
	logConfig.EnableSubSystem(testSubSystem)

	ctx := ContextWithLogConfig(context.Background(), logConfig)
	log := NewLoggerObject(ctx)
	subCtx := ContextWithLogSubSystem(ctx, testSubSystem)
	withoutSubCtx := ContextWithOutLogSubSystem(ctx)

	Log(ctx, LevelInfo, "Without subsystem")
	Log(subCtx, LevelInfo, "With subsystem")
	Log(withoutSubCtx, LevelInfo, "Without subsystem")

	log.Printf("Print")
}

func TestDisabledSubSystem(t *testing.T) {
	const testSubSystem = "TestDisabledSubSystem"

	logConfig := NewProductionConfig()

	ctx := ContextWithLogConfig(context.Background(), logConfig)
	subCtx := ContextWithLogSubSystem(ctx, testSubSystem)
	withoutSubCtx := ContextWithOutLogSubSystem(ctx)

	Log(ctx, LevelInfo, "Without subsystem")
	Log(subCtx, LevelInfo, "With subsystem")
	Log(withoutSubCtx, LevelInfo, "Without subsystem")
}

func TestFields(t *testing.T) {
	ctx := ContextWithLogConfig(context.Background(), NewDevelopmentConfig())

	s := String("string", "value")
	i := Int("integer", 10)
	ui := Uint("unsigned int", uint(20))
	f := Float32("float32", 1.0)
	f64 := Float64("float64", 2.0)
	InfoWithFields(ctx, []Field{s, i, ui, f, f64}, "String, Int, Uint, Float32, Float64")

	stringWithQuotes := String("with quote", `"should escape quote`)
	stringWithBackspace := String("with backspace", "\b should escape backspace")
	InfoWithFields(ctx, []Field{stringWithQuotes, stringWithBackspace}, "String, String")

	hex := Hex("hex", []byte{1, 2, 3})
	InfoWithFields(ctx, []Field{hex}, "Hex")

	u32s := Uint32s("uint list", []uint32{1, 2, 3})
	InfoWithFields(ctx, []Field{u32s}, "Uint32s")

	float32s := Float32s("float list", []float32{1.234, 2.948463, 3.1})
	InfoWithFields(ctx, []Field{float32s}, "Float32s")

	payload := struct {
		Field1 string `json:"field_1"`
		Field2 int    `json:"field_2"`
	}{
		Field1: "value 1",
		Field2: 2,
	}
	jsonField := JSON("json_struct", &payload)
	InfoWithFields(ctx, []Field{jsonField}, "JSON")
}

// Test_DuplicateFields verifies a field supplied directly to a log call replaces, rather than
//   duplicates, a same-named field already attached to the context.
func Test_DuplicateFields(t *testing.T) {
	logPath := tempLogPath(t)
	defer os.Remove(logPath)

	logConfig := &Config{
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}
	main, err := newSystemConfig(false, false, logPath)
	if err != nil {
		t.Fatalf("newSystemConfig: %s", err)
	}
	logConfig.Main = main
	logConfig.Active = *main

	ctx := ContextWithLogConfig(context.Background(), logConfig)
	ctx = ContextWithLogFields(ctx, String("duplicate", "original"))

	if err := InfoWithFields(ctx, []Field{String("duplicate", "should not show")}, "Message"); err != nil {
		t.Fatalf("InfoWithFields: %s", err)
	}

	contents, err := ioutil.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %s", err)
	}

	got := string(contents)
	if strings.Count(got, "\"duplicate\"") != 1 {
		t.Errorf("expected exactly one duplicate field in entry, got: %s", got)
	}
	if !strings.Contains(got, "should not show") {
		t.Errorf("expected the call-specific field to win, got: %s", got)
	}
	if strings.Contains(got, "original") {
		t.Errorf("expected the context field to be replaced, got: %s", got)
	}
}

func TestWaitWarning(t *testing.T) {
	ctx := ContextWithLogConfig(context.Background(), NewDevelopmentConfig())

	waitWarning := NewWaitingWarning(ctx, 50*time.Millisecond, "Print this a few times")
	time.Sleep(200 * time.Millisecond)
	waitWarning.Cancel()
}

func tempLogPath(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s/wirelog_test_%s.log", os.TempDir(), uuid.New().String())
}

func BenchmarkContextWithLogTrace(b *testing.B) {
	ctx := ContextWithLogConfig(context.Background(), NewProductionConfig())

	for i := 0; i < b.N; i++ {
		ContextWithLogTrace(ctx, "trace")
	}
}

func BenchmarkContextWithOutLogSubSystem(b *testing.B) {
	ctx := ContextWithLogConfig(context.Background(), NewProductionConfig())

	for i := 0; i < b.N; i++ {
		ContextWithOutLogSubSystem(ctx)
	}
}

func BenchmarkDummyNoFields(b *testing.B) {
	main, _ := newSystemConfig(false, false, "dummy")
	logConfig := &Config{
		Main:               main,
		Active:             *main,
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}
	ctx := ContextWithLogConfig(context.Background(), logConfig)

	for i := 0; i < b.N; i++ {
		Info(ctx, "Simple log entry %d", i)
	}
}

func BenchmarkDummyWithFields(b *testing.B) {
	main, _ := newSystemConfig(false, false, "dummy")
	logConfig := &Config{
		Main:               main,
		Active:             *main,
		IncludedSubSystems: make(map[string]bool),
		SubSystems:         make(map[string]*SystemConfig),
	}
	ctx := ContextWithLogConfig(context.Background(), logConfig)

	for i := 0; i < b.N; i++ {
		InfoWithFields(ctx, []Field{
			String("title", "string value"),
			Int("index", i),
			Float32("float", 123.556),
		}, "Simple log entry with fields")
	}
}
