package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List node kinds and their parameters",
	Args:  cobra.NoArgs,
	RunE:  runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, kind := range transforms.Kinds() {
		t, err := transforms.New(kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (%s)\n", kind, kind.Title())
		for _, info := range t.Parameters() {
			fmt.Fprintf(out, "  %-15s %s\n", info.Name, describe(info))
		}
	}
	return nil
}

func describe(info transforms.ParameterInfo) string {
	var rng string
	switch info.Type {
	case transforms.ParamEnum:
		rng = strings.Join(info.Options, "|")
	case transforms.ParamBool:
		rng = "true|false"
	default:
		rng = fmt.Sprintf("%d..%d", info.Min, info.Max)
		if info.Odd {
			rng += " odd"
		}
	}
	return fmt.Sprintf("%-6s %-20s default %s  %s", info.Type, rng, info.Format(info.Default), info.Description)
}
