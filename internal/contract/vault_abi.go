package contract

// DefaultVaultAddress is the deployed WBTC vault the front-end talks to.
const DefaultVaultAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// Vault function names.
const (
	FnDeposit          = "deposit"
	FnFundGas          = "fundGas"
	FnWithdrawGas      = "withdrawGas"
	FnCheckBalance     = "checkBalance"
	FnCheckBeneficiary = "checkBeneficiary"
)

// VaultABI is the subset of the vault's ABI used by the front-end.
//
//	deposit(uint256)
//	fundGas(address)          payable
//	withdrawGas(uint256)
//	checkBalance(address)     → uint256
//	checkBeneficiary(address) → address
var VaultABI = []ABIEntry{
	{
		Name: FnDeposit, Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: FnFundGas, Type: "function",
		Inputs:          []ABIParam{{Name: "beneficiary", Type: "address"}},
		StateMutability: "payable",
	},
	{
		Name: FnWithdrawGas, Type: "function",
		Inputs:          []ABIParam{{Name: "amount", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{
		Name: FnCheckBalance, Type: "function",
		Inputs:          []ABIParam{{Name: "depositor", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: FnCheckBeneficiary, Type: "function",
		Inputs:          []ABIParam{{Name: "depositor", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "address"}},
		StateMutability: "view",
	},
}
