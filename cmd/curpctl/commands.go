package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"curpkit/internal/curp/models"
	jwttoken "curpkit/internal/jwt_token"
	"curpkit/internal/platform/config"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Compute the 16-character code for an identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := identityFromFlags(cmd)
			if err != nil {
				return err
			}
			res, err := newService(cmd).Encode(cmd.Context(), id)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Code)
			if verbose {
				fmt.Fprintf(out, "identity:       %s\n", res.Segments.Identity)
				fmt.Fprintf(out, "candidate:      %s\n", res.Segments.Candidate)
				fmt.Fprintf(out, "filtered:       %t\n", res.Segments.Filtered)
				fmt.Fprintf(out, "differentiator: %s\n", res.Segments.Differentiator)
			}
			return nil
		},
	}
	addIdentityFlags(cmd)
	cmd.Flags().BoolP("verbose", "v", false, "Print the name-derived segments")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate CODE",
		Short: "Check a candidate CURP against an identity",
		Long: `Check a candidate CURP against an identity. By default the first 16
characters are compared, so a full 18-character CURP is accepted. --strict
requires the candidate to be exactly the 16-character code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identityFromFlags(cmd)
			if err != nil {
				return err
			}
			mode := models.ModePrefix16
			if strict, _ := cmd.Flags().GetBool("strict"); strict {
				mode = models.ModeStrict
			}
			res, err := newService(cmd).Validate(cmd.Context(), id, args[0], mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid=%t well_formed=%t\n", res.Valid, res.WellFormed)
			if !res.Valid {
				return errMismatch
			}
			return nil
		},
	}
	addIdentityFlags(cmd)
	cmd.Flags().Bool("strict", false, "Require an exact 16-character match")
	return cmd
}

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match CODE",
		Short: "Check whether names produce the name-derived parts of a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			given, _ := flags.GetString("given")
			paternal, _ := flags.GetString("paternal")
			maternal, _ := flags.GetString("maternal")
			matched, err := newService(cmd).NameMatch(cmd.Context(), models.NameQuery{
				GivenName:       given,
				PaternalSurname: paternal,
				MaternalSurname: maternal,
				Code:            args[0],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "match=%t\n", matched)
			if !matched {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().String("given", "", "Given name(s)")
	cmd.Flags().String("paternal", "", "Paternal surname")
	cmd.Flags().String("maternal", "", "Maternal surname (optional)")
	_ = cmd.MarkFlagRequired("given")
	_ = cmd.MarkFlagRequired("paternal")
	return cmd
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse CODE",
		Short: "Check the structure of a code and print its segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := newService(cmd).Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "identity:       %s\n", code.Identity())
			fmt.Fprintf(out, "birth_date:     %s\n", code.BirthDate())
			fmt.Fprintf(out, "sex:            %s\n", code.Sex())
			fmt.Fprintf(out, "entity:         %s (%s)\n", code.Entity(), code.Entity().Name())
			fmt.Fprintf(out, "differentiator: %s\n", code.Differentiator())
			return nil
		},
	}
}

func newEntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List federal entity codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range newService(cmd).Entities() {
				fmt.Fprintf(tw, "%s\t%s\n", e.Code, e.Name)
			}
			return tw.Flush()
		},
	}
}

func newTokenCmd() *cobra.Command {
	defaults := config.Default().Server
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			key, _ := flags.GetString("signing-key")
			if key == "" {
				return fmt.Errorf("signing key is required (--signing-key or CURP_JWT_SIGNING_KEY)")
			}
			issuer, _ := flags.GetString("issuer")
			audience, _ := flags.GetString("audience")
			clientID, _ := flags.GetString("client-id")
			ttl, _ := flags.GetDuration("ttl")

			token, err := jwttoken.NewJWTService(key, issuer, audience).GenerateAccessToken(clientID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("signing-key", envOr("CURP_JWT_SIGNING_KEY", ""), "HMAC signing key")
	cmd.Flags().String("issuer", envOr("CURP_JWT_ISSUER", defaults.JWTIssuer), "Token issuer")
	cmd.Flags().String("audience", envOr("CURP_JWT_AUDIENCE", defaults.JWTAudience), "Token audience")
	cmd.Flags().String("client-id", "", "Client the token is issued to")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("client-id")
	return cmd
}
