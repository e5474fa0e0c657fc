package saddle

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const swapABIJSON = `[
  {
    "inputs": [],
    "name": "swapStorage",
    "outputs": [
      {"internalType": "uint256", "name": "initialA", "type": "uint256"},
      {"internalType": "uint256", "name": "futureA", "type": "uint256"},
      {"internalType": "uint256", "name": "initialATime", "type": "uint256"},
      {"internalType": "uint256", "name": "futureATime", "type": "uint256"},
      {"internalType": "uint256", "name": "swapFee", "type": "uint256"},
      {"internalType": "uint256", "name": "adminFee", "type": "uint256"},
      {"internalType": "contract LPToken", "name": "lpToken", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint8", "name": "index", "type": "uint8"}],
    "name": "getTokenBalance",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "uint8", "name": "index", "type": "uint8"}],
    "name": "getToken",
    "outputs": [{"internalType": "contract IERC20", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint8", "name": "tokenIndexFrom", "type": "uint8"},
      {"internalType": "uint8", "name": "tokenIndexTo", "type": "uint8"},
      {"internalType": "uint256", "name": "dx", "type": "uint256"}
    ],
    "name": "calculateSwap",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const erc20ABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	swapABI     abi.ABI
	swapABIOnce sync.Once
	swapABIErr  error

	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

// SwapABI returns the parsed Saddle swap ABI.
func SwapABI() (abi.ABI, error) {
	swapABIOnce.Do(func() {
		swapABI, swapABIErr = abi.JSON(strings.NewReader(swapABIJSON))
	})
	return swapABI, swapABIErr
}

// ERC20ABI returns the parsed ERC20 subset used for pooled and LP tokens.
func ERC20ABI() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}
