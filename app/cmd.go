// =================================================================================
//
//			fox-synth - https://www.foxhollow.cc/projects/fox-audio/
//
//		 Fox Synth is a small monophonic keyboard synthesizer that renders a
//	  hot-swappable signal processor straight to an audio output device
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fox-synth/audio"
	"fox-synth/model"
	"fox-synth/util"

	"github.com/spf13/cobra"
)

var (
	// arguments
	args model.CommandLineArgs

	rootCmd = &cobra.Command{
		Use:   "fox-synth",
		Short: "Play a monophonic synthesizer from the keyboard",
		Long: "Play a monophonic synthesizer from the computer keyboard.\n\n" +
			"Keys a w s e d f t g y h u j k o l p play one chromatic octave and a bit,\n" +
			"z / x shift the octave, n cycles the waveform, , / . select a parameter\n" +
			"and - / = adjust it. Esc or Ctrl-C quits.",

		RunE: func(cmd *cobra.Command, _ []string) error {
			args.LogLevelSet = cmd.Flags().Changed("log-level")
			ConfigureTextLogger(slog.Level(args.LogLevel))

			config, err := util.ReadConfig(&args)
			if err != nil {
				return err
			}

			return runEngine(config)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&args.ConfigFile, "config", "c", "", "Path to the yaml config file (default "+util.DefaultConfigFile+")")
	rootCmd.Flags().StringVarP(&args.Backend, "backend", "b", "", "Audio backend to play through: "+strings.Join(audio.Backends(), ", "))
	rootCmd.Flags().StringVarP(&args.OutputType, "output", "o", "", "User interface: tui or json (default tui, json when stdout is not a terminal)")
	rootCmd.Flags().StringVarP(&args.Waveform, "waveform", "w", "", "Initial waveform: sine, square, saw or triangle")
	rootCmd.Flags().BoolVar(&args.Simulate, "simulate", false, "Render to the null device in real time instead of a sound card")
	rootCmd.Flags().IntVar(&args.LogLevel, "log-level", 0, "slog level, -4 debug, 0 info, 4 warn, 8 error")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
