/*
 * blocklistctl - commands
 *
 * Copyright 2026 Marco Confalonieri.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"opnsense-blocklist/internal/logging"
	"opnsense-blocklist/internal/opnsense"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	logFieldComponent = "component"
	componentUnbound  = "unbound"
)

// blocklist is the set of appliance operations used by the commands.
type blocklist interface {
	GetBlocklistStatus(ctx context.Context) (bool, error)
	ToggleUnboundBlocklist(ctx context.Context, enable bool) opnsense.Result
	GetDHCPLeases(ctx context.Context) opnsense.Result
}

// blocklistFactory creates the blocklist once the command line is parsed.
type blocklistFactory func() (blocklist, error)

// newBlocklist reads the appliance configuration from the environment.
func newBlocklist() (blocklist, error) {
	config, err := opnsense.NewConfiguration()
	if err != nil {
		return nil, fmt.Errorf("reading opnsense configuration failed: %w", err)
	}
	return opnsense.NewAPI(opnsense.NewClient(config)), nil
}

// commands holds the state shared by the sub-commands.
type commands struct {
	factory blocklistFactory
	bl      blocklist
	logger  *log.Entry
}

func newRootCommand(factory blocklistFactory) *cobra.Command {
	c := &commands{factory: factory}

	root := &cobra.Command{
		Use:     "blocklistctl",
		Short:   "Toggle the Unbound DNS blocklist of an OPNsense appliance",
		Version: fmt.Sprintf("%s (%s)", Version, Gitsha),
		// errors are already logged with the component field
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.toggle,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "toggle",
			Short: "Flip the blocklist state",
			Args:  cobra.NoArgs,
			RunE:  c.toggle,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the blocklist is enabled",
			Args:  cobra.NoArgs,
			RunE:  c.status,
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Enable the blocklist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.set(cmd, true)
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable the blocklist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.set(cmd, false)
			},
		},
		&cobra.Command{
			Use:   "leases",
			Short: "Print the DHCPv4 leases as JSON",
			Args:  cobra.NoArgs,
			RunE:  c.leases,
		},
	)
	return root
}

func (c *commands) setup(cmd *cobra.Command, args []string) error {
	if err := logging.Init(cmd.OutOrStdout()); err != nil {
		return err
	}
	c.logger = log.WithField(logFieldComponent, componentUnbound)
	bl, err := c.factory()
	if err != nil {
		c.logger.Errorf("Error: %v", err)
		return err
	}
	c.bl = bl
	return nil
}

// toggle reads the current state and flips it.
func (c *commands) toggle(cmd *cobra.Command, args []string) error {
	enabled, err := c.bl.GetBlocklistStatus(cmd.Context())
	if err != nil {
		return c.fail(err)
	}
	c.logger.Infof("blocklist is %s", stateName(enabled))

	if enabled {
		c.logger.Info("disabling blocklist...")
		if err := c.bl.ToggleUnboundBlocklist(cmd.Context(), false).SaveError(); err != nil {
			return c.fail(err)
		}
		c.logger.Info("blocklist disabled successfully")
		return nil
	}
	c.logger.Info("enabling blocklist...")
	if err := c.bl.ToggleUnboundBlocklist(cmd.Context(), true).SaveError(); err != nil {
		return c.fail(err)
	}
	c.logger.Info("enabled successfully")
	return nil
}

func (c *commands) status(cmd *cobra.Command, args []string) error {
	enabled, err := c.bl.GetBlocklistStatus(cmd.Context())
	if err != nil {
		return c.fail(err)
	}
	c.logger.Infof("blocklist is %s", stateName(enabled))
	return nil
}

// set enables or disables the blocklist regardless of its current state.
func (c *commands) set(cmd *cobra.Command, enable bool) error {
	if enable {
		c.logger.Info("enabling blocklist...")
	} else {
		c.logger.Info("disabling blocklist...")
	}
	if err := c.bl.ToggleUnboundBlocklist(cmd.Context(), enable).SaveError(); err != nil {
		return c.fail(err)
	}
	c.logger.Infof("blocklist %s successfully", stateName(enable))
	return nil
}

func (c *commands) leases(cmd *cobra.Command, args []string) error {
	res := c.bl.GetDHCPLeases(cmd.Context())
	if !res.OK() {
		return c.fail(res.Error())
	}
	out, err := json.MarshalIndent(res.Body, "", "  ")
	if err != nil {
		return c.fail(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func (c *commands) fail(err error) error {
	c.logger.Errorf("Error: %v", err)
	return err
}

func stateName(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
