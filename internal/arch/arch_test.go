// ./internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const module = "doubletvote/"

type pkg struct {
	ImportPath string
	Imports    []string
}

// shell packages that no library layer may reach back into
var shell = []string{
	"doubletvote/internal/app", "doubletvote/internal/appcore",
	"doubletvote/internal/appshell", "doubletvote/internal/cli",
	"doubletvote/cmd/",
}

func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "doubletvote/...")
	var out bytes.Buffer
	cmd.Stdout = &out
	require.NoError(t, cmd.Run(), "go list")
	dec := json.NewDecoder(&out)

	bans := map[string][]string{
		// the voting core sees observations only
		"doubletvote/internal/doublet":   {"doubletvote/internal/observe", "doubletvote/internal/table", "doubletvote/internal/output", "doubletvote/internal/writers"},
		"doubletvote/internal/vote":      {"doubletvote/internal/observe", "doubletvote/internal/table", "doubletvote/internal/output", "doubletvote/internal/writers"},
		"doubletvote/internal/cluster":   {"doubletvote/internal/observe", "doubletvote/internal/table", "doubletvote/internal/output", "doubletvote/internal/writers"},
		"doubletvote/internal/consensus": {"doubletvote/internal/observe", "doubletvote/internal/table", "doubletvote/internal/output", "doubletvote/internal/writers"},
		"doubletvote/internal/engine":    {"doubletvote/internal/table", "doubletvote/internal/output", "doubletvote/internal/writers", "doubletvote/internal/config"},
		"doubletvote/internal/observe":   {"doubletvote/internal/table", "doubletvote/internal/engine"},
		"doubletvote/internal/table":     {"doubletvote/internal/engine", "doubletvote/internal/output"},
		"doubletvote/internal/output":    nil,
		"doubletvote/internal/writers":   nil,
		"doubletvote/pkg/api":            {"doubletvote/internal/"},
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else {
			require.NoError(t, err, "decode")
		}
		imp := p.ImportPath
		forbidden, ok := bans[imp]
		if !ok {
			continue
		}
		forbidden = append(forbidden, shell...)
		for _, dep := range p.Imports {
			if !strings.HasPrefix(dep, module) {
				continue
			}
			for _, ban := range forbidden {
				if dep == ban || (strings.HasSuffix(ban, "/") && strings.HasPrefix(dep, ban)) {
					violations = append(violations, imp+" → "+dep)
				}
			}
		}
	}

	require.Empty(t, violations, "import boundary violations:\n  %s", strings.Join(violations, "\n  "))
}
