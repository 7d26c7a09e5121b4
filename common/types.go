package common

type LocalMsgType uint32

func (lt LocalMsgType) Type() LocalMsgType {
	return lt & 0xff00
}

func (lt LocalMsgType) SubType() LocalMsgType {
	return lt & 0x00ff
}

// |--type--|-subtype-|
// 0000 0000 0000 0000
const (
	LocalNoUseType            LocalMsgType = 0
	LocalTrainMsg             LocalMsgType = 1 << 8
	LocalTrainMsg_Epoch       LocalMsgType = LocalTrainMsg | 1
	LocalTrainMsg_Converged   LocalMsgType = LocalTrainMsg | 2
	LocalTrainMsg_Halted      LocalMsgType = LocalTrainMsg | 3
	LocalRenderMsg            LocalMsgType = 2 << 8
	LocalRenderMsg_Frame      LocalMsgType = LocalRenderMsg | 1
	LocalRenderMsg_NoBoundary LocalMsgType = LocalRenderMsg | 2
)
