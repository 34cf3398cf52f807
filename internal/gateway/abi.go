package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for the two contract roles, limited to the surface the
// client consumes. Kept as JSON so the go-ethereum packer handles all
// selector and argument encoding.

const coreABIJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allSubTokens","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"governanceVault","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"initialLiquidityAdded","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"deployTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"releasedIncentive","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"launchToken","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"}],"outputs":[]},
	{"type":"function","name":"claimGovernanceTokens","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"addInitialLiquidityAndBurnLP","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"setGovernanceVault","stateMutability":"nonpayable","inputs":[{"name":"_vault","type":"address"}],"outputs":[]},
	{"type":"function","name":"manualBuyback","stateMutability":"nonpayable","inputs":[{"name":"minAmountOut","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"OrgLaunched","inputs":[{"name":"token","type":"address","indexed":true},{"name":"creator","type":"address","indexed":true}],"anonymous":false},
	{"type":"event","name":"InitialLiquidityAdded","inputs":[{"name":"ethAmount","type":"uint256","indexed":false},{"name":"prmAmount","type":"uint256","indexed":false},{"name":"lpAmount","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"GovernanceVaultSet","inputs":[{"name":"vault","type":"address","indexed":true}],"anonymous":false},
	{"type":"event","name":"BuybackBurn","inputs":[{"name":"ethAmount","type":"uint256","indexed":false},{"name":"prmBurned","type":"uint256","indexed":false}],"anonymous":false}
]`

const subTokenABIJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"totalMinted","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isGraduated","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getCurrentPrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getProgress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getBuyAmount","stateMutability":"view","inputs":[{"name":"ethIn","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getSellAmount","stateMutability":"view","inputs":[{"name":"tokenIn","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"buy","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"sell","stateMutability":"nonpayable","inputs":[{"name":"tokenAmount","type":"uint256"}],"outputs":[]}
]`

var (
	coreABI     abi.ABI
	subTokenABI abi.ABI
)

func init() {
	var err error
	coreABI, err = abi.JSON(strings.NewReader(coreABIJSON))
	if err != nil {
		panic("gateway: bad core ABI: " + err.Error())
	}
	subTokenABI, err = abi.JSON(strings.NewReader(subTokenABIJSON))
	if err != nil {
		panic("gateway: bad sub-token ABI: " + err.Error())
	}
}
