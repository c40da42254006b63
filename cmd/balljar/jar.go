package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/balljar/internal/ball"
	"github.com/san-kum/balljar/internal/storage"
)

var (
	spinCount int
	commitAll bool
)

func newJarCmd() *cobra.Command {
	jarCmd := &cobra.Command{
		Use:   "jar",
		Short: "manage the today and long-term collections",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "show both collections",
		Args:  cobra.NoArgs,
		RunE:  listJar,
	}

	spinCmd := &cobra.Command{
		Use:   "spin",
		Short: "spin for new today balls",
		Args:  cobra.NoArgs,
		RunE:  spinJar,
	}
	spinCmd.Flags().IntVarP(&spinCount, "count", "n", 1, "number of spins")

	addCmd := &cobra.Command{
		Use:   "add [minutes]",
		Short: "add a today ball of a given value",
		Args:  cobra.ExactArgs(1),
		RunE:  addBall,
	}

	removeCmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "remove a today ball",
		Args:  cobra.ExactArgs(1),
		RunE:  removeBall,
	}

	commitCmd := &cobra.Command{
		Use:   "commit [id]",
		Short: "move today balls into the long-term jar",
		Args:  cobra.MaximumNArgs(1),
		RunE:  commitBalls,
	}
	commitCmd.Flags().BoolVar(&commitAll, "all", false, "commit every today ball")

	useCmd := &cobra.Command{
		Use:   "use [id]",
		Short: "redeem a today ball to unlock blocked apps for its minutes",
		Args:  cobra.ExactArgs(1),
		RunE:  useBall,
	}

	blockCmd := &cobra.Command{
		Use:   "block [app]",
		Short: "add an app to the block list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editJar(func(c *storage.Collections) error {
				if !c.Block(args[0]) {
					return fmt.Errorf("%s is already blocked", args[0])
				}
				fmt.Printf("blocked %s\n", args[0])
				return nil
			})
		},
	}

	unblockCmd := &cobra.Command{
		Use:   "unblock [app]",
		Short: "remove an app from the block list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editJar(func(c *storage.Collections) error {
				if !c.Unblock(args[0]) {
					return fmt.Errorf("%s is not blocked", args[0])
				}
				fmt.Printf("unblocked %s\n", args[0])
				return nil
			})
		},
	}

	jarCmd.AddCommand(listCmd, spinCmd, addCmd, removeCmd, commitCmd, useCmd, blockCmd, unblockCmd)
	return jarCmd
}

// editJar loads the collections, applies fn and saves them back.
func editJar(fn func(c *storage.Collections) error) error {
	js := storage.NewJarStore(dataDir)
	c, err := js.Load()
	if err != nil {
		return err
	}
	if err := fn(&c); err != nil {
		return err
	}
	if err := js.Save(c); err != nil {
		return err
	}
	logger.Debug("jar saved", "path", js.Path(), "today", len(c.Today), "longterm", len(c.LongTerm))
	return nil
}

func listJar(cmd *cobra.Command, args []string) error {
	c, err := storage.NewJarStore(dataDir).Load()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JAR\tID\tMINUTES\tTIER")
	for _, b := range c.Today {
		fmt.Fprintf(w, "today\t%s\t%d\t%s\n", b.ID, b.Minutes, ball.TierFor(b.Minutes))
	}
	for _, b := range c.LongTerm {
		fmt.Fprintf(w, "longterm\t%s\t%d\t%s\n", b.ID, b.Minutes, ball.TierFor(b.Minutes))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	longTerm := ball.TotalMinutes(c.LongTerm)
	fmt.Printf("\ntoday: %d balls, %d min\n", len(c.Today), ball.TotalMinutes(c.Today))
	fmt.Printf("long-term: %d balls, %d / %d min\n", len(c.LongTerm), longTerm, storage.NextGoal(longTerm))
	fmt.Println(unlockStatus(c, time.Now()))
	return nil
}

func unlockStatus(c storage.Collections, now time.Time) string {
	apps := strings.Join(c.BlockedApps, ", ")
	if apps == "" {
		apps = "none"
	}
	if left := c.Remaining(now); left > 0 {
		return fmt.Sprintf("apps: %s unlocked for %s (until %s)", apps, left.Round(time.Second), c.UnlockedUntil.Local().Format("15:04"))
	}
	return fmt.Sprintf("apps: %s blocked", apps)
}

func useBall(cmd *cobra.Command, args []string) error {
	return editJar(func(c *storage.Collections) error {
		now := time.Now()
		b, err := c.Use(args[0], now)
		if err != nil {
			return err
		}
		fmt.Printf("used %d min  %s\n", b.Minutes, b.ID)
		fmt.Println(unlockStatus(*c, now))
		return nil
	})
}

func spinJar(cmd *cobra.Command, args []string) error {
	if spinCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return editJar(func(c *storage.Collections) error {
		for range spinCount {
			b := c.AddToday(ball.Draw(rng, ball.KindToday))
			fmt.Printf("spun %2d min  %s\n", b.Minutes, b.ID)
		}
		return nil
	})
}

func addBall(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes <= 0 {
		return fmt.Errorf("minutes must be a positive integer, got %q", args[0])
	}
	return editJar(func(c *storage.Collections) error {
		b := c.AddToday(ball.New(ball.KindToday, minutes))
		fmt.Printf("added %d min  %s\n", b.Minutes, b.ID)
		return nil
	})
}

func removeBall(cmd *cobra.Command, args []string) error {
	return editJar(func(c *storage.Collections) error {
		if !c.RemoveToday(args[0]) {
			return fmt.Errorf("%w: %s", storage.ErrBallNotFound, args[0])
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	})
}

func commitBalls(cmd *cobra.Command, args []string) error {
	if commitAll == (len(args) == 1) {
		return fmt.Errorf("give a ball id or --all")
	}
	return editJar(func(c *storage.Collections) error {
		ids := args
		if commitAll {
			ids = make([]string, len(c.Today))
			for i, b := range c.Today {
				ids[i] = b.ID
			}
		}
		for _, id := range ids {
			b, err := c.MoveToLongTerm(id)
			if err != nil {
				return err
			}
			fmt.Printf("committed %d min  %s -> %s\n", b.Minutes, id, b.ID)
		}
		return nil
	})
}
