package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noEnv(string) string { return "" }

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.yaml")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, noEnv)
	return code, stdout.String(), stderr.String()
}

func TestVersionAndHelp(t *testing.T) {
	for _, arg := range []string{"--version", "-V"} {
		code, out, _ := runArgs(arg)
		if code != exitOK || !strings.HasPrefix(out, "blocks version ") {
			t.Errorf("%s: code %d, output %q", arg, code, out)
		}
	}

	code, out, _ := runArgs("--help")
	if code != exitOK || !strings.Contains(out, "blocks run [--config PATH] [-q] <file>") {
		t.Errorf("--help: code %d, output %q", code, out)
	}

	if code, _, _ := runArgs("--bogus"); code != exitUsage {
		t.Errorf("unknown flag: code %d", code)
	}
}

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name   string
		source string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{
			name:   "output and result",
			source: "- print: hello\n- return: \"1 + 1\"\n",
			code:   exitOK,
			stdout: "hello\n2\n",
		},
		{
			name:   "quiet",
			source: "- print: hello\n- return: \"1 + 1\"\n",
			args:   []string{"-q"},
			code:   exitOK,
			stdout: "hello\n",
		},
		{
			name:   "string result is quoted",
			source: "- return: hi\n",
			code:   exitOK,
			stdout: "\"hi\"\n",
		},
		{
			name:   "None is not printed",
			source: "- print: done\n",
			code:   exitOK,
			stdout: "done\n",
		},
		{
			name:   "runtime error",
			source: "- print: before\n- print: \"{ghost}\"\n",
			code:   exitError,
			stdout: "before\n",
			stderr: "Runtime error",
		},
		{
			name:   "bad program",
			source: "- teleport: home\n",
			code:   exitError,
			stderr: "unknown block type 'teleport'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run"}, tt.args...)
			args = append(args, writeProgram(t, tt.source))
			code, stdout, stderr := runArgs(args...)
			if code != tt.code {
				t.Errorf("code = %d, want %d (stderr %q)", code, tt.code, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout, tt.stdout)
			}
			if tt.stderr == "" && stderr != "" {
				t.Errorf("unexpected stderr %q", stderr)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.stderr)
			}
		})
	}
}

func TestRunCommand_ErrorReportedOnce(t *testing.T) {
	_, _, stderr := runArgs("run", writeProgram(t, "- print: \"{ghost}\"\n"))
	if n := strings.Count(stderr, "ghost"); n != 1 {
		t.Errorf("error mentioned %d times:\n%s", n, stderr)
	}
}

func TestRunCommand_Usage(t *testing.T) {
	if code, _, _ := runArgs("run"); code != exitUsage {
		t.Errorf("run without a file: code %d", code)
	}
	code, _, stderr := runArgs("run", filepath.Join(t.TempDir(), "missing.yaml"))
	if code != exitError || !strings.Contains(stderr, "cannot read program") {
		t.Errorf("missing file: code %d, stderr %q", code, stderr)
	}
}

func TestRunCommand_Journal(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "benday.yaml")
	cfg := "journal:\n  enabled: true\n  dsn: runs.db\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := runArgs("run", "--config", cfgPath, writeProgram(t, "- print: logged\n"))
	if code != exitOK {
		t.Fatalf("code = %d, stderr %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "runs.db")); err != nil {
		t.Errorf("journal was not created: %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	good := writeProgram(t, "- print: fine\n")
	bad := writeProgram(t, "- while: x\n  do: nope\n")

	code, stdout, _ := runArgs("check", good)
	if code != exitOK || stdout != good+": ok\n" {
		t.Errorf("good: code %d, stdout %q", code, stdout)
	}

	code, stdout, stderr := runArgs("check", good, bad)
	if code != exitError {
		t.Errorf("mixed: code %d", code)
	}
	if !strings.Contains(stdout, good) || !strings.Contains(stderr, bad) {
		t.Errorf("stdout %q, stderr %q", stdout, stderr)
	}

	if code, _, _ := runArgs("check"); code != exitUsage {
		t.Errorf("no files: code %d", code)
	}
}

func TestASTAndOutline(t *testing.T) {
	path := writeProgram(t, "- print: hello\n")

	code, stdout, _ := runArgs("ast", path)
	if code != exitOK || stdout != "print \"hello\"\n" {
		t.Errorf("ast: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runArgs("outline", path)
	if code != exitOK || !strings.Contains(stdout, "(0,0)") || !strings.Contains(stdout, "print") {
		t.Errorf("outline: code %d, stdout %q", code, stdout)
	}

	if code, _, _ := runArgs("ast"); code != exitUsage {
		t.Errorf("ast without a file: code %d", code)
	}
}

func TestDescribeCommand(t *testing.T) {
	code, stdout, _ := runArgs("describe", "while")
	if code != exitOK || !strings.Contains(stdout, "while") {
		t.Errorf("describe while: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runArgs("describe", "--json", "assign")
	if code != exitOK || !strings.Contains(stdout, `"name": "assign"`) && !strings.Contains(stdout, `"name":"assign"`) {
		t.Errorf("describe --json: code %d, stdout %q", code, stdout)
	}

	code, _, stderr := runArgs("describe", "whiel")
	if code != exitError || !strings.Contains(stderr, "while") {
		t.Errorf("unknown topic: code %d, stderr %q", code, stderr)
	}

	if code, _, _ := runArgs("describe"); code != exitUsage {
		t.Errorf("no topic: code %d", code)
	}
}
