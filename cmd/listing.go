package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gsymbex/internal/assembler"
)

var listingCommand = &cobra.Command{
	Use:   "listing",
	Short: "parse a program and print its instruction listing",
	Long:  ``,
	RunE: func(*cobra.Command, []string) error {
		return listing()
	},
}

var (
	ListingFile string
)

func init() {
	listingCommand.Flags().StringVar(&ListingFile, "file", "", "program file")
	_ = listingCommand.MarkFlagRequired("file")
}

func loadProgram(file string) (*assembler.Program, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	program, err := assembler.Parse(string(source))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", file)
	}
	return program, nil
}

func listing() error {
	program, err := loadProgram(ListingFile)
	if err != nil {
		return err
	}
	fmt.Print(program.GetListing())
	return nil
}
