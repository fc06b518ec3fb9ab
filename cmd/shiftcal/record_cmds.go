package main

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/username/shiftcal/internal/daemon"
	"github.com/username/shiftcal/internal/holiday"
	"github.com/username/shiftcal/internal/schedule"
	"github.com/username/shiftcal/pkg/dateutil"
)

func markCmd() *cobra.Command {
	var shiftsFlag string
	var noteFlag string

	cmd := &cobra.Command{
		Use:   "mark <date> <work|rest|partial|unset>",
		Short: "Set the explicit status for a date",
		Long: "Set the explicit status for a date. Partial days take --shifts; " +
			"'unset' with --note keeps a note without overriding the status.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			status, err := schedule.ParseStatus(args[1])
			if err != nil {
				return err
			}

			if utf8.RuneCountInString(noteFlag) > schedule.MaxNoteLength {
				return fmt.Errorf("note too long: %d characters (max %d)",
					utf8.RuneCountInString(noteFlag), schedule.MaxNoteLength)
			}

			if shiftsFlag != "" && status != schedule.StatusPartial {
				return fmt.Errorf("--shifts only applies to partial days")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var shifts schedule.ShiftSet
			if status == schedule.StatusPartial {
				shifts, err = schedule.ParseShiftSet(shiftsFlag)
				if err != nil {
					return err
				}
				valid := schedule.ValidShifts(a.cfg.Schedule.ShiftSlots)
				for _, id := range shifts {
					if !valid.Contains(id) {
						return fmt.Errorf("shift %d is not valid for %d slots (valid: %s)",
							id, a.cfg.Schedule.ShiftSlots, valid)
					}
				}
			}

			rec := schedule.DayRecord{
				Date:   dateutil.StartOfDay(date),
				Status: status,
				Note:   noteFlag,
				Shifts: shifts,
			}

			if err := a.records.Upsert(rec); err != nil {
				return err
			}

			if rec.IsEmpty() {
				fmt.Printf("✅ %s cleared (record carried no information)\n",
					dateutil.DateKey(date))
				return nil
			}

			fmt.Printf("✅ %s marked as %s\n", dateutil.DateKey(date), status)
			printResolution(a.resolver.Resolve(date))
			return nil
		},
	}

	cmd.Flags().StringVar(&shiftsFlag, "shifts", "", "Active shifts for a partial day, e.g. 2,3")
	cmd.Flags().StringVar(&noteFlag, "note", "", "Short note for the day (max 15 characters)")

	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <date>",
		Short: "Remove the explicit record for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.records.Delete(date); err != nil {
				return err
			}

			fmt.Printf("✅ %s cleared\n", dateutil.DateKey(date))
			printResolution(a.resolver.Resolve(date))
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	var sourceFlag string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the holiday feed and replace the override set",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			pref := a.cfg.Holiday.Source
			if sourceFlag != "" {
				pref = sourceFlag
			}

			if pref == holiday.PreferenceNone {
				a.holidays.Clear()
				if err := a.holidays.SaveFile(a.cfg.Holiday.SnapshotFile); err != nil {
					return err
				}
				a.events.HolidayChanged()
				fmt.Println("✅ Holiday overrides disabled and cleared")
				return nil
			}

			var src holiday.Source
			if sourceFlag != "" {
				var ok bool
				src, ok = holiday.SourceFor(pref)
				if !ok {
					return fmt.Errorf("unknown holiday source %q (known: %v)",
						pref, holiday.Presets())
				}
			} else {
				var ok bool
				src, ok = a.cfg.FeedSource()
				if !ok {
					return fmt.Errorf("no holiday feed configured")
				}
			}

			if err := a.fetcher.Refresh(context.Background(), src, a.holidays); err != nil {
				fmt.Printf("❌ Holiday refresh failed, prior data kept: %v\n", err)
				return err
			}

			fmt.Printf("✅ Holiday data refreshed from %s (%d records)\n",
				src.Name, a.holidays.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "Override the configured holiday source")

	return cmd
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled holiday refreshes and watch for config changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			src, ok := a.cfg.FeedSource()
			if !ok {
				return fmt.Errorf("holiday source is %q; nothing to refresh",
					holiday.PreferenceNone)
			}

			d := daemon.New(
				a.fetcher,
				a.holidays,
				src,
				a.cfg.Daemon.GetRefreshCron(),
				configPath,
				a.events,
				logger,
			)

			return d.Start()
		},
	}
}
