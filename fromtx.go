package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
)

// addressDecString renders a 20-byte address the way State/Balances key
// addresses: the address read as a big-endian Word, in base 10.
func addressDecString(addr common.Address) string {
	var w uint256.Int
	w.SetBytes(addr.Bytes())
	return decString(&w)
}

func hexOfUint64(v uint64) string {
	return fmt.Sprintf("%x", v)
}

func hexOfBigInt(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return fmt.Sprintf("%x", v)
}

// EvmDataFromTx dials nodeURL, loads a historical transaction by hash, and
// builds the EvmData an Evm() call needs to replay it: the callee's
// deployed code as of the tx's block and its balance as of the end of the
// preceding block, seeded into State/Balances under the callee's decimal
// address key. No other account is seeded. Used only by the CLI's `tx` subcommand
// — the interpreter core never reaches the network.
func EvmDataFromTx(nodeURL, txHash string) (data *EvmData, code []byte, err error) {
	client, err := ethclient.Dial(nodeURL)
	if err != nil {
		return nil, nil, err
	}
	defer client.Close()

	ctx := context.Background()
	hash := common.HexToHash(txHash)

	tx, _, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, nil, err
	}

	signer := types.NewLondonSigner(chainID)
	from, err := types.Sender(signer, tx)
	if err != nil {
		return nil, nil, err
	}

	block, err := client.BlockByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return nil, nil, err
	}
	if tx.To() == nil {
		return nil, nil, fmt.Errorf("tx %s is a contract-creation transaction, not a call", txHash)
	}
	to := *tx.To()

	code, err = client.CodeAt(ctx, to, receipt.BlockNumber)
	if err != nil {
		return nil, nil, err
	}
	// Query the block before the one the tx landed in: an archive node only
	// answers "balance after this block fully executed".
	preBlock := new(big.Int).Sub(receipt.BlockNumber, big.NewInt(1))
	balance, err := client.BalanceAt(ctx, to, preBlock)
	if err != nil {
		return nil, nil, err
	}

	baseFee := big.NewInt(0)
	if block.BaseFee() != nil {
		baseFee = block.BaseFee()
	}

	toKey := addressDecString(to)

	data = &EvmData{
		Context: &EvmContext{
			Coinbase:   block.Coinbase().Hex(),
			Basefee:    hexOfBigInt(baseFee),
			Timestamp:  hexOfUint64(block.Time()),
			Number:     hexOfUint64(block.NumberU64()),
			Difficulty: hexOfBigInt(block.Difficulty()),
			GasLimit:   hexOfUint64(block.GasLimit()),
			ChainId:    hexOfBigInt(chainID),
		},
		TxData: &TxData{
			From:     from.Hex(),
			To:       to.Hex(),
			Origin:   from.Hex(),
			Value:    hexOfBigInt(tx.Value()),
			GasPrice: hexOfBigInt(tx.GasPrice()),
			Data:     common.Bytes2Hex(tx.Data()),
		},
		State:    map[string]string{toKey: common.Bytes2Hex(code)},
		Balances: map[string]Word{toKey: *uint256.MustFromBig(balance)},
	}

	return data, code, nil
}
