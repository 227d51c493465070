package reflection

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// dumperScript prints a Dump of every internal function as JSON.
const dumperScript = `
$out = ['phpVersion' => PHP_VERSION, 'functions' => []];
foreach (get_defined_functions()['internal'] as $name) {
    try {
        $rf = new ReflectionFunction($name);
    } catch (ReflectionException $e) {
        continue;
    }
    $params = [];
    foreach ($rf->getParameters() as $p) {
        $param = [
            'name' => $p->getName(),
            'optional' => $p->isOptional(),
            'variadic' => $p->isVariadic(),
            'byRef' => $p->isPassedByReference(),
        ];
        if ($p->hasType()) {
            $param['type'] = (string)$p->getType();
        }
        if ($p->isDefaultValueAvailable() && $p->isDefaultValueConstant()) {
            $param['default'] = $p->getDefaultValueConstantName();
        } elseif ($p->isDefaultValueAvailable()) {
            $param['default'] = var_export($p->getDefaultValue(), true);
        }
        $params[] = $param;
    }
    $out['functions'][] = [
        'name' => $rf->getName(),
        'deprecated' => $rf->isDeprecated(),
        'parameters' => $params,
    ];
}
echo json_encode($out);
`

// Runner produces a Dump by running a PHP binary.
type Runner struct {
	Binary string
}

// NewRunner creates a Runner for binary; "" means "php" from PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "php"
	}
	return &Runner{Binary: binary}
}

// Dump runs the dumper script and decodes its output.
func (r *Runner) Dump(ctx context.Context) (*Dump, error) {
	cmd := exec.CommandContext(ctx, r.Binary, "-r", dumperScript)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("failed to run %s: %w: %s", r.Binary, err, msg)
		}
		return nil, fmt.Errorf("failed to run %s: %w", r.Binary, err)
	}

	return ReadDump(&stdout)
}
