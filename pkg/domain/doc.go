/*
Package domain contains the core models of the asset-request assistant.

It defines the conversation record and the closed set of stages a session can be in.
This package is kept pure and free of external dependencies like I/O or persistence.

# Key Entities

  - ConversationState: one user's transcript, current stage, liveness and pending request.
  - Stage: the closed enumeration of positions in the flow; SetStage is the only validated write.
  - PendingRequest: the asset request being assembled, filled strictly in order.
  - LifecycleHooks: callbacks fired by the engine for observability.
*/
package domain
