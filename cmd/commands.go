package cmd

func init() {
	rootCmd.AddCommand(
		NewVerifyCommand(),
		NewInspectCommand(),
		NewProfilesCommand(),
		NewConfigureCommand(),
		NewVersionCommand(),
		NewUpdateCommand(),
	)
}
