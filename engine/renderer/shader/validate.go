package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
)

// Validate runs WGSL source through the naga front end (parse, lower, validate) so broken
// programs are reported with source positions before they reach the device.
//
// Parameters:
//   - source: WGSL source code
//
// Returns:
//   - error: nil when the program is valid, otherwise every diagnostic joined
func Validate(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	diags, err := naga.Validate(module)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if len(diags) == 0 {
		return nil
	}
	errs := make([]error, 0, len(diags))
	for _, d := range diags {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}
