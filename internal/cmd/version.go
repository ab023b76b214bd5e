package cmd

import (
	"fmt"

	"github.com/oxidize/oxidize/internal/codegen/common"
)

type Version struct{}

func (v *Version) Run() error {
	version, err := common.GetVersion()
	if err != nil {
		return err
	}
	fmt.Println("oxidize", version)
	return nil
}
