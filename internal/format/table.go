package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/holiman/uint256"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stableScope/internal/model"
	"stableScope/internal/quote"
)

// RenderQuote writes a quote result as a table.
func RenderQuote(w io.Writer, res quote.Result) {
	snap := res.Snapshot
	in := tokenAt(snap, res.Request.From)
	out := tokenAt(snap, res.Request.To)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(snap.Pool)
	t.SetCaption(fmt.Sprintf("block %d, reference time %d", snap.BlockNumber, res.Now))
	t.AppendHeader(table.Row{"", "In", "Out"})
	t.AppendRow(table.Row{"Index", res.Request.From, res.Request.To})
	t.AppendRow(table.Row{"Token", tokenLabel(in), tokenLabel(out)})
	t.AppendRow(table.Row{"Amount", FormatUnits(res.Request.AmountIn, in.Decimals), FormatUnits(res.AmountOut, out.Decimals)})
	t.AppendRow(table.Row{"Raw", amountDec(res.Request.AmountIn), amountDec(res.AmountOut)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Swap fee", FormatUnits(res.SwapFee, out.Decimals), FormatUnits(res.SwapFee, out.Decimals)}, mergeRow)
	t.AppendRow(table.Row{"Admin fee", FormatUnits(res.AdminFee, out.Decimals), FormatUnits(res.AdminFee, out.Decimals)}, mergeRow)
	a := FormatA(res.PreciseA)
	t.AppendRow(table.Row{"A", a, a}, mergeRow)
	vp := "n/a"
	if res.VirtualPrice != nil {
		vp = FormatUnits(res.VirtualPrice, 18)
	}
	t.AppendRow(table.Row{"Virtual price", vp, vp}, mergeRow)
	t.Render()
}

// RenderSnapshot writes the pool parameters and per-token balances.
func RenderSnapshot(w io.Writer, snap model.PoolSnapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(snap.Pool)
	t.SetCaption(fmt.Sprintf("chain %d, block %d, timestamp %d", snap.ChainID, snap.BlockNumber, snap.Timestamp))
	t.AppendHeader(table.Row{"#", "Token", "Decimals", "Balance", "Multiplier"})
	for i, token := range snap.Tokens {
		balance := ""
		if i < len(snap.Balances) {
			balance = humanString(snap.Balances[i], token.Decimals)
		}
		multiplier := ""
		if i < len(snap.PrecisionMultipliers) {
			multiplier = snap.PrecisionMultipliers[i]
		}
		t.AppendRow(table.Row{i, tokenLabel(token), token.Decimals, balance, multiplier})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"", "A ramp", "", fmt.Sprintf("%s -> %s", snap.InitialA, snap.FutureA), fmt.Sprintf("%d -> %d", snap.InitialATime, snap.FutureATime)})
	t.AppendRow(table.Row{"", "Fees", "", "swap " + feeString(snap.SwapFee), "admin " + feeString(snap.AdminFee)})
	t.AppendRow(table.Row{"", "LP supply", "", humanString(snap.LPSupply, 18), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

var mergeRow = table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft}

func tokenAt(snap model.PoolSnapshot, index int) model.TokenMeta {
	if index < 0 || index >= len(snap.Tokens) {
		return model.TokenMeta{Decimals: 18}
	}
	return snap.Tokens[index]
}

func tokenLabel(token model.TokenMeta) string {
	if token.Address == "" {
		return "?"
	}
	if token.Symbol == "" {
		return token.Address
	}
	return fmt.Sprintf("%s (%s)", token.Symbol, shortAddress(token.Address))
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func amountDec(amount *uint256.Int) string {
	if amount == nil {
		return "n/a"
	}
	return amount.Dec()
}

func humanString(raw string, decimals uint8) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	amount, err := ParseUnits(raw, 0)
	if err != nil {
		return raw
	}
	return FormatUnits(amount, decimals)
}

func feeString(raw string) string {
	amount, err := ParseUnits(raw, 0)
	if err != nil {
		return raw
	}
	return FormatFee(amount)
}
