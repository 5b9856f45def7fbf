// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evm

import (
	"bytes"
	"math"

	"github.com/Fantom-foundation/Vela/go/vela"
	"github.com/holiman/uint256"
)

func opEndWithResult(c *context) error {
	offset := *c.stack.pop()
	size := *c.stack.pop()
	if err := checkSizeOffsetUint64Overflow(&offset, &size); err != nil {
		return err
	}
	var err error
	c.returnData, err = c.memory.getSlice(offset.Uint64(), size.Uint64(), c)
	return err
}

func opPc(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.pc))
}

// jumpTo moves the program counter to the given destination, which must be
// a JUMPDEST outside of any PUSH data.
func jumpTo(c *context, destination *uint256.Int) error {
	if !destination.IsUint64() || !c.jumpDests.isValid(destination.Uint64()) {
		return errInvalidJump
	}
	// the interpreter increments the pc after the instruction
	c.pc = int(destination.Uint64()) - 1
	return nil
}

func opJump(c *context) error {
	return jumpTo(c, c.stack.pop())
}

func opJumpi(c *context) error {
	destination := c.stack.pop()
	condition := c.stack.pop()
	if condition.IsZero() {
		return nil
	}
	return jumpTo(c, destination)
}

func opPop(c *context) {
	c.stack.pop()
}

// opPush pushes the n bytes following the current instruction. Data
// exceeding the end of the code is padded with zeros.
func opPush(c *context, n int) {
	var data [32]byte
	start := c.pc + 1
	if start < len(c.code) {
		copy(data[:n], c.code[start:])
	}
	c.stack.pushUndefined().SetBytes(data[:n])
	c.pc += n
}

func opPush1(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1], z[0] = 0, 0, 0, 0
	if c.pc+1 < len(c.code) {
		z[0] = uint64(c.code[c.pc+1])
	}
	c.pc++
}

func opDup(c *context, pos int) {
	c.stack.dup(pos - 1)
}

func opSwap(c *context, pos int) {
	c.stack.swap(pos)
}

func opMstore(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()

	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return errGasUintOverflow
	}
	return c.memory.setWord(offset, value, c)
}

func opMstore8(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()

	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return errGasUintOverflow
	}
	return c.memory.setByte(offset, byte(value.Uint64()), c)
}

func opMload(c *context) error {
	var trg = c.stack.peek()
	var addr = *trg

	offset, overflow := addr.Uint64WithOverflow()
	if overflow {
		return errGasUintOverflow
	}
	return c.memory.readWord(offset, trg, c)
}

func opMsize(c *context) {
	c.stack.pushUndefined().SetUint64(c.memory.len())
}

func opSstore(c *context) error {
	// SSTORE is a write instruction, it shall not be executed in static mode.
	if c.params.Static {
		return errWriteProtection
	}

	// EIP-2200 demands that more than the sentry gas is available for SSTORE
	if c.gas <= SstoreSentryGasEIP2200 {
		return errOutOfGas
	}

	var key = vela.Key(c.stack.pop().Bytes32())
	var value = vela.Word(c.stack.pop().Bytes32())

	storageStatus := c.context.SetStorage(c.params.Recipient, key, value)
	if err := c.useGas(getDynamicCostsForSstore(storageStatus)); err != nil {
		return err
	}
	c.refund += getRefundForSstore(storageStatus)
	return nil
}

func opSload(c *context) {
	var top = c.stack.peek()
	value := c.context.GetStorage(c.params.Recipient, vela.Key(top.Bytes32()))
	top.SetBytes32(value[:])
}

func opCaller(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Sender[:])
}

func opCallvalue(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.Value[:])
}

func opCallDatasize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Input)))
}

func opCallDataload(c *context) {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		top.Clear()
		return
	}
	top.SetBytes32(getData(c.params.Input, offset, 32))
}

// genericDataCopy implements CALLDATACOPY and CODECOPY for the given source.
func genericDataCopy(c *context, source []byte) error {
	var (
		memOffset  = c.stack.pop()
		dataOffset = c.stack.pop()
		length     = c.stack.pop()
	)

	if err := checkSizeOffsetUint64Overflow(memOffset, length); err != nil {
		return err
	}

	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = math.MaxUint64
	}

	// Charge for the copy costs
	words := vela.SizeInWords(length.Uint64())
	if err := c.useGas(CopyGas * vela.Gas(words)); err != nil {
		return err
	}

	data, err := c.memory.getSlice(memOffset.Uint64(), length.Uint64(), c)
	if err != nil {
		return err
	}
	copy(data, getData(source, dataOffset64, length.Uint64()))
	return nil
}

func opAnd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.And(a, b)
}

func opOr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Or(a, b)
}

func opNot(c *context) {
	a := c.stack.peek()
	a.Not(a)
}

func opXor(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Xor(a, b)
}

func opIszero(c *context) {
	top := c.stack.peek()
	if top.IsZero() {
		top.SetOne()
	} else {
		top.Clear()
	}
}

func opEq(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Eq(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opLt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Lt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opGt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Gt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSlt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Slt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSgt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Sgt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opShr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Rsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opShl(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.LtUint64(256) {
		b.Lsh(b, uint(a.Uint64()))
	} else {
		b.Clear()
	}
}

func opSar(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.GtUint64(256) {
		if b.Sign() >= 0 {
			b.Clear()
		} else {
			b.SetAllOne()
		}
		return
	}
	b.SRsh(b, uint(a.Uint64()))
}

func opSignExtend(c *context) {
	back, num := c.stack.pop(), c.stack.peek()
	num.ExtendSign(num, back)
}

func opByte(c *context) {
	th, val := c.stack.pop(), c.stack.peek()
	val.Byte(th)
}

func opAdd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Add(a, b)
}

func opSub(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Sub(a, b)
}

func opMul(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mul(a, b)
}

func opMulMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.MulMod(a, b, n)
}

func opDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Div(a, b)
}

func opSDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SDiv(a, b)
}

func opMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mod(a, b)
}

func opAddMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.AddMod(a, b, n)
}

func opSMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SMod(a, b)
}

func opExp(c *context) error {
	base, exponent := c.stack.pop(), c.stack.peek()
	if err := c.useGas(ExpByteGas * vela.Gas(exponent.ByteLen())); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}

func opSha3(c *context) error {
	offset, size := c.stack.pop(), c.stack.peek()

	if err := checkSizeOffsetUint64Overflow(offset, size); err != nil {
		return err
	}

	data, err := c.memory.getSlice(offset.Uint64(), size.Uint64(), c)
	if err != nil {
		return err
	}

	words := vela.SizeInWords(size.Uint64())
	if err := c.useGas(Sha3WordGas * vela.Gas(words)); err != nil {
		return err
	}

	hash := Keccak256(data)
	size.SetBytes32(hash[:])
	return nil
}

func opGas(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.gas))
}

func opDifficulty(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.PrevRandao[:])
}

func opTimestamp(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.Timestamp))
}

func opNumber(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.BlockNumber))
}

func opCoinbase(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Coinbase[:])
}

func opGasLimit(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.params.GasLimit))
}

func opGasPrice(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.GasPrice[:])
}

func opChainId(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.ChainID[:])
}

func opBalance(c *context) {
	slot := c.stack.peek()
	balance := c.context.GetBalance(vela.Address(slot.Bytes20()))
	slot.SetBytes32(balance[:])
}

func opSelfbalance(c *context) {
	balance := c.context.GetBalance(c.params.Recipient)
	c.stack.pushUndefined().SetBytes32(balance[:])
}

func opSelfdestruct(c *context) (status, error) {
	// SELFDESTRUCT is a write instruction, it shall not be executed in static mode.
	if c.params.Static {
		return statusFailed, errWriteProtection
	}

	beneficiary := vela.Address(c.stack.pop().Bytes20())
	cost := selfDestructNewAccountCost(
		c.context.AccountExists(beneficiary),
		c.context.GetBalance(c.params.Recipient),
	)
	if err := c.useGas(cost); err != nil {
		return statusFailed, err
	}

	if c.context.SelfDestruct(c.params.Recipient, beneficiary) {
		c.refund += SelfdestructRefundGas
	}
	return statusSelfDestructed, nil
}

func selfDestructNewAccountCost(accountExists bool, balance vela.Value) vela.Gas {
	if !accountExists && !balance.IsZero() {
		return CreateBySelfdestructGas
	}
	return 0
}

func opBlockhash(c *context) {
	num := c.stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return
	}
	upper := uint64(c.params.BlockNumber)
	lower := uint64(0)
	if upper > 256 {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash := c.context.GetBlockHash(int64(num64))
		num.SetBytes32(hash[:])
	} else {
		num.Clear()
	}
}

func opAddress(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Recipient[:])
}

func opOrigin(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Origin[:])
}

func opCodeSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Code)))
}

func opExtcodesize(c *context) {
	top := c.stack.peek()
	top.SetUint64(uint64(c.context.GetCodeSize(vela.Address(top.Bytes20()))))
}

func opExtcodehash(c *context) {
	slot := c.stack.peek()
	address := vela.Address(slot.Bytes20())
	if !c.context.AccountExists(address) {
		slot.Clear()
		return
	}
	hash := c.context.GetCodeHash(address)
	slot.SetBytes32(hash[:])
}

func opExtCodeCopy(c *context) error {
	var (
		a          = c.stack.pop()
		memOffset  = c.stack.pop()
		codeOffset = c.stack.pop()
		length     = c.stack.pop()
	)
	if err := checkSizeOffsetUint64Overflow(memOffset, length); err != nil {
		return err
	}

	// Charge for length of copied code
	words := vela.SizeInWords(length.Uint64())
	if err := c.useGas(CopyGas * vela.Gas(words)); err != nil {
		return err
	}

	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = math.MaxUint64
	}

	data, err := c.memory.getSlice(memOffset.Uint64(), length.Uint64(), c)
	if err != nil {
		return err
	}
	code := c.context.GetCode(vela.Address(a.Bytes20()))
	copy(data, getData(code, codeOffset64, length.Uint64()))
	return nil
}

// getData returns size bytes of data starting at start, right-padded with
// zeros where data is exhausted.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length || end < start {
		end = length
	}
	res := make([]byte, int(size))
	copy(res, data[start:end])
	return res
}

func checkSizeOffsetUint64Overflow(offset, size *uint256.Int) error {
	if size.IsZero() {
		return nil
	}
	if !offset.IsUint64() || !size.IsUint64() || offset.Uint64()+size.Uint64() < offset.Uint64() {
		return errGasUintOverflow
	}
	return nil
}

func genericCreate(c *context, kind vela.CallKind) error {
	// CREATE is a write instruction, it shall not be executed in static mode.
	if c.params.Static {
		return errWriteProtection
	}

	var (
		value  = c.stack.pop()
		offset = c.stack.pop()
		size   = c.stack.pop()
		salt   = vela.Hash{}
	)
	if kind == vela.Create2 {
		salt = c.stack.pop().Bytes32()
	}

	if err := checkSizeOffsetUint64Overflow(offset, size); err != nil {
		return err
	}

	input, err := c.memory.getSlice(offset.Uint64(), size.Uint64(), c)
	if err != nil {
		return err
	}

	if kind == vela.Create2 {
		// Charge for hashing the init code to compute the target address.
		words := vela.SizeInWords(size.Uint64())
		if err := c.useGas(Sha3WordGas * vela.Gas(words)); err != nil {
			return err
		}
	}

	// All but one 64th of the remaining gas is forwarded (EIP-150).
	gas := c.gas - c.gas/64
	if err := c.useGas(gas); err != nil {
		return err
	}

	res, err := c.context.Call(kind, vela.CallParameters{
		Sender: c.params.Recipient,
		Value:  vela.Value(value.Bytes32()),
		Input:  input,
		Gas:    gas,
		Salt:   salt,
	})
	if err != nil {
		return fatalError{err}
	}

	success := c.stack.pushUndefined()
	if res.Success {
		success.SetBytes20(res.CreatedAddress[:])
		c.returnData = nil
	} else {
		success.Clear()
		c.returnData = res.Output
	}
	c.gas += res.GasLeft
	c.refund += res.GasRefund
	return nil
}

func genericCall(c *context, kind vela.CallKind) error {
	stack := c.stack
	value := uint256.NewInt(0)

	// Pop call parameters.
	providedGas, addr := stack.pop(), stack.pop()
	if kind == vela.Call || kind == vela.CallCode {
		value = stack.pop()
	}
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()

	toAddr := vela.Address(addr.Bytes20())

	if err := checkSizeOffsetUint64Overflow(inOffset, inSize); err != nil {
		return err
	}
	if err := checkSizeOffsetUint64Overflow(retOffset, retSize); err != nil {
		return err
	}

	// Get arguments from the memory.
	args, err := c.memory.getSlice(inOffset.Uint64(), inSize.Uint64(), c)
	if err != nil {
		return err
	}
	output, err := c.memory.getSlice(retOffset.Uint64(), retSize.Uint64(), c)
	if err != nil {
		return err
	}

	// Charge for transferring value.
	if !value.IsZero() {
		if err := c.useGas(CallValueTransferGas); err != nil {
			return err
		}
	}

	// Non-zero value calls creating a new account are charged an additional
	// fee (EIP-158).
	if kind == vela.Call && !value.IsZero() && !c.context.AccountExists(toAddr) {
		if err := c.useGas(CallNewAccountGas); err != nil {
			return err
		}
	}

	// All but one 64th of the available gas may be passed to a nested call
	// (EIP-150).
	nestedCallGas := c.gas - c.gas/64
	if providedGas.IsUint64() && nestedCallGas >= vela.Gas(providedGas.Uint64()) {
		nestedCallGas = vela.Gas(providedGas.Uint64())
	}
	if err := c.useGas(nestedCallGas); err != nil {
		return err
	}

	// Calls issued in static mode are static calls.
	if c.params.Static && kind == vela.Call {
		kind = vela.StaticCall
	}

	callParams := vela.CallParameters{
		Input: args,
		Gas:   nestedCallGas,
		Value: vela.Value(value.Bytes32()),
	}

	switch kind {
	case vela.Call, vela.StaticCall:
		callParams.Sender = c.params.Recipient
		callParams.Recipient = toAddr
		callParams.CodeAddress = toAddr

	case vela.CallCode:
		callParams.Sender = c.params.Recipient
		callParams.Recipient = c.params.Recipient
		callParams.CodeAddress = toAddr

	case vela.DelegateCall:
		callParams.Sender = c.params.Sender
		callParams.Recipient = c.params.Recipient
		callParams.CodeAddress = toAddr
		callParams.Value = c.params.Value
	}

	ret, err := c.context.Call(kind, callParams)
	if err != nil {
		return fatalError{err}
	}

	copy(output, ret.Output)

	success := stack.pushUndefined()
	if ret.Success {
		success.SetOne()
	} else {
		success.Clear()
	}
	c.gas += ret.GasLeft
	c.refund += ret.GasRefund
	c.returnData = ret.Output
	return nil
}

func opCall(c *context) error {
	value := c.stack.peekN(2)
	// In a static call, no value must be transferred.
	if c.params.Static && !value.IsZero() {
		return errWriteProtection
	}
	return genericCall(c, vela.Call)
}

func opReturnDataSize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.returnData)))
}

func opReturnDataCopy(c *context) error {
	var (
		memOffset  = c.stack.pop()
		dataOffset = c.stack.pop()
		length     = c.stack.pop()
	)

	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return errReturnDataOutOfBounds
	}
	var end uint256.Int
	end.Add(dataOffset, length)
	end64, overflow := end.Uint64WithOverflow()
	if overflow || uint64(len(c.returnData)) < end64 {
		return errReturnDataOutOfBounds
	}

	if err := checkSizeOffsetUint64Overflow(memOffset, length); err != nil {
		return err
	}

	words := vela.SizeInWords(length.Uint64())
	if err := c.useGas(CopyGas * vela.Gas(words)); err != nil {
		return err
	}

	data, err := c.memory.getSlice(memOffset.Uint64(), length.Uint64(), c)
	if err != nil {
		return err
	}
	copy(data, c.returnData[offset64:end64])
	return nil
}

func opLog(c *context, size int) error {
	// LOG instructions are write instructions, they shall not be executed in static mode.
	if c.params.Static {
		return errWriteProtection
	}

	topics := make([]vela.Hash, size)
	mStart, mSize := c.stack.pop(), c.stack.pop()
	for i := 0; i < size; i++ {
		topics[i] = c.stack.pop().Bytes32()
	}

	if err := checkSizeOffsetUint64Overflow(mStart, mSize); err != nil {
		return err
	}

	data, err := c.memory.getSlice(mStart.Uint64(), mSize.Uint64(), c)
	if err != nil {
		return err
	}

	// charge for log size
	logSize := mSize.Uint64()
	if logSize > math.MaxInt64/uint64(LogDataGas) {
		return errOutOfGas
	}
	if err := c.useGas(LogDataGas * vela.Gas(logSize)); err != nil {
		return err
	}

	c.context.EmitLog(vela.Log{
		Address: c.params.Recipient,
		Topics:  topics,
		Data:    bytes.Clone(data),
	})
	return nil
}
