// Package cli provides shell completion support for the storefront command.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BashCompletion generates bash completion script
const BashCompletion = `#!/bin/bash
# Bash completion for the storefront CLI

_storefront_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    local commands="register login logout whoami products product categories cart cart-add cart-rm cart-set checkout orders order product-add product-update product-delete order-status completion help"

    local global_flags="-config"

    case "${prev}" in
        products)
            COMPREPLY=( $(compgen -W "-search -category -sort" -- ${cur}) )
            return 0
            ;;
        -sort)
            COMPREPLY=( $(compgen -W "name price-low price-high newest" -- ${cur}) )
            return 0
            ;;
        order-status)
            return 0
            ;;
        -config)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        storefront)
            COMPREPLY=( $(compgen -W "${commands} ${global_flags}" -- ${cur}) )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
    return 0
}

complete -F _storefront_completion storefront
`

// ZshCompletion generates zsh completion script
const ZshCompletion = `#compdef storefront

_storefront() {
    local -a commands
    commands=(
        'register:Create a new account'
        'login:Log in and persist the session token'
        'logout:End the session'
        'whoami:Show the current account'
        'products:List catalog products'
        'product:Show one product'
        'categories:List catalog categories'
        'cart:Show the cart with totals'
        'cart-add:Add a product to the cart'
        'cart-rm:Remove a cart line item'
        'cart-set:Set the quantity of a cart line item'
        'checkout:Place an order from the cart'
        'orders:List order history'
        'order:Show one order'
        'product-add:Create a product (admin)'
        'product-update:Replace a product (admin)'
        'product-delete:Delete a product (admin)'
        'order-status:Progress an order (admin)'
        'completion:Generate shell completion'
    )

    _arguments -C \
        '-config[Configuration file path]:file:_files' \
        '1:command:->command' \
        '*::arg:->args'

    case "$state" in
        command)
            _describe 'command' commands
            ;;
    esac
}

_storefront
`

// FishCompletion generates fish completion script
const FishCompletion = `# Fish completion for the storefront CLI

complete -c storefront -f
complete -c storefront -n "__fish_use_subcommand" -a register -d "Create a new account"
complete -c storefront -n "__fish_use_subcommand" -a login -d "Log in"
complete -c storefront -n "__fish_use_subcommand" -a logout -d "End the session"
complete -c storefront -n "__fish_use_subcommand" -a whoami -d "Show the current account"
complete -c storefront -n "__fish_use_subcommand" -a products -d "List catalog products"
complete -c storefront -n "__fish_use_subcommand" -a product -d "Show one product"
complete -c storefront -n "__fish_use_subcommand" -a categories -d "List catalog categories"
complete -c storefront -n "__fish_use_subcommand" -a cart -d "Show the cart"
complete -c storefront -n "__fish_use_subcommand" -a cart-add -d "Add a product to the cart"
complete -c storefront -n "__fish_use_subcommand" -a cart-rm -d "Remove a cart line item"
complete -c storefront -n "__fish_use_subcommand" -a cart-set -d "Set a line item quantity"
complete -c storefront -n "__fish_use_subcommand" -a checkout -d "Place an order"
complete -c storefront -n "__fish_use_subcommand" -a orders -d "List order history"
complete -c storefront -n "__fish_use_subcommand" -a order -d "Show one order"
complete -c storefront -n "__fish_use_subcommand" -a order-status -d "Progress an order (admin)"
complete -c storefront -l config -r -d "Configuration file path"
`

// GenerateCompletion writes the completion script for shell to out.
func GenerateCompletion(out io.Writer, shell string) error {
	script, err := scriptFor(shell)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, script)
	return err
}

// InstallCompletion installs the completion script to the shell's standard
// location under the user's home directory.
func InstallCompletion(shell string) error {
	script, err := scriptFor(shell)
	if err != nil {
		return err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	var installPath string
	switch shell {
	case "bash":
		installPath = filepath.Join(homeDir, ".bash_completion.d", "storefront")
	case "zsh":
		installPath = filepath.Join(homeDir, ".zsh", "completion", "_storefront")
	case "fish":
		installPath = filepath.Join(homeDir, ".config", "fish", "completions", "storefront.fish")
	}
	if err := os.MkdirAll(filepath.Dir(installPath), 0o755); err != nil {
		return fmt.Errorf("create completion directory: %w", err)
	}
	if err := os.WriteFile(installPath, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write completion script: %w", err)
	}

	fmt.Printf("Completion script installed to: %s\n", installPath)
	return nil
}

func scriptFor(shell string) (string, error) {
	switch shell {
	case "bash":
		return BashCompletion, nil
	case "zsh":
		return ZshCompletion, nil
	case "fish":
		return FishCompletion, nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}
