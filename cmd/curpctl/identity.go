package main

import (
	"github.com/spf13/cobra"

	curpHandler "curpkit/internal/curp/handler"
	"curpkit/pkg/curp"
)

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().String("given", "", "Given name(s)")
	cmd.Flags().String("paternal", "", "Paternal surname")
	cmd.Flags().String("maternal", "", "Maternal surname (optional)")
	cmd.Flags().String("birth-date", "", "Birth date, YYYY-MM-DD")
	cmd.Flags().String("sex", "", "Sex: H, M, male or female")
	cmd.Flags().String("entity", "", "Two-letter federal entity code, NE for born abroad")
	_ = cmd.MarkFlagRequired("given")
	_ = cmd.MarkFlagRequired("paternal")
	_ = cmd.MarkFlagRequired("birth-date")
	_ = cmd.MarkFlagRequired("sex")
	_ = cmd.MarkFlagRequired("entity")
}

// identityFromFlags applies the same request validation as the HTTP API.
func identityFromFlags(cmd *cobra.Command) (curp.Identity, error) {
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	req := curpHandler.IdentityRequest{
		GivenName:       get("given"),
		PaternalSurname: get("paternal"),
		MaternalSurname: get("maternal"),
		BirthDate:       get("birth-date"),
		Sex:             get("sex"),
		Entity:          get("entity"),
	}
	if err := req.Validate(); err != nil {
		return curp.Identity{}, err
	}
	return req.Identity(), nil
}
